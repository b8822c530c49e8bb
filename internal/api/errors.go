package api

import (
	"errors"
	"fmt"
	"net/http"
)

// UnavailableError means the backend could not be reached or its response
// could not be read.
type UnavailableError struct {
	Method string
	Path   string
	Cause  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("backend unavailable: %s %s: %v", e.Method, e.Path, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// RejectedError means the backend answered with a non-success status.
// Message is the server-supplied reason when one was sent.
type RejectedError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("backend rejected %s %s (%d): %s", e.Method, e.Path, e.StatusCode, msg)
}

// IsUnavailable reports whether err is, or wraps, an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// IsRejected reports whether err is, or wraps, a RejectedError.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// IsNotFound reports whether the backend answered 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status of a RejectedError, or 0.
func StatusCode(err error) int {
	var re *RejectedError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// Message returns a short user-facing description of err.
func Message(err error) string {
	var (
		re *RejectedError
		ue *UnavailableError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &re):
		if re.Message != "" {
			return re.Message
		}
		return http.StatusText(re.StatusCode)
	case errors.As(err, &ue):
		return "could not reach the cover letter service"
	default:
		return err.Error()
	}
}
