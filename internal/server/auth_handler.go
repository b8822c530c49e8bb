package server

import (
	"log"
	"net/http"

	"github.com/jonathan/cover-letter-studio/internal/types"
)

// handleToken exchanges the API key for a signed bearer token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.jwtService == nil {
		s.writeError(w, &ErrAuthDisabled{})
		return
	}

	var req types.TokenRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	if !s.apiKey.Verify(req.APIKey) {
		log.Printf("[auth] rejected token request from %s", s.extractClientID(r))
		s.writeError(w, &ErrInvalidAPIKey{})
		return
	}

	token, expiresAt, err := s.jwtService.GenerateToken(tokenSubject)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
