package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cover-letter-studio/internal/generation"
	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrInvalidAPIKey indicates a token request with an unknown API key
type ErrInvalidAPIKey struct{}

func (e *ErrInvalidAPIKey) Error() string {
	return "invalid API key"
}

// ErrAuthDisabled indicates a token request to a server without
// authentication configured
type ErrAuthDisabled struct{}

func (e *ErrAuthDisabled) Error() string {
	return "authentication is not enabled on this server"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation     *ErrValidation
		invalidKey     *ErrInvalidAPIKey
		authDisabled   *ErrAuthDisabled
		unknownSection *sections.UnknownSectionError
		tooLarge       *http.MaxBytesError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case store.IsNotFound(err), errors.As(err, &authDisabled):
		return http.StatusNotFound
	case errors.As(err, &validation),
		errors.As(err, &unknownSection),
		types.IsValidationError(err),
		errors.Is(err, generation.ErrUnsupportedFile),
		errors.Is(err, generation.ErrNoText):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &invalidKey):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
