// Package server provides the HTTP REST API for cover letter drafting:
// versioned cover letters with per-section history, job postings, PDF
// context documents and generation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/config"
	"github.com/jonathan/cover-letter-studio/internal/generation"
	"github.com/jonathan/cover-letter-studio/internal/server/middleware"
	"github.com/jonathan/cover-letter-studio/internal/server/ratelimit"
	"github.com/jonathan/cover-letter-studio/internal/store"
)

const (
	// DefaultMaxUploadBytes bounds multipart uploads.
	DefaultMaxUploadBytes = 10 << 20
	// maxJSONBodyBytes bounds JSON request bodies.
	maxJSONBodyBytes = 1 << 20
	// tokenSubject is the subject of tokens issued for the shared API key.
	tokenSubject = "api-client"
)

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	store          store.Store
	gen            *generation.Service
	rateLimiter    *ratelimit.Limiter
	jwtService     *JWTService
	apiKey         *config.APIKeyConfig
	maxUploadBytes int64
}

// Config holds server configuration
type Config struct {
	Port int
	// RateLimit defaults to ratelimit.LoadConfig().
	RateLimit *ratelimit.Config
	// JWT and APIKey enable bearer token authentication when both are set.
	JWT            *config.JWTConfig
	APIKey         *config.APIKeyConfig
	MaxUploadBytes int64
}

// New creates a server backed by st, generating letters with gen.
func New(cfg Config, st store.Store, gen *generation.Service) (*Server, error) {
	if st == nil || gen == nil {
		return nil, fmt.Errorf("server requires a store and a generation service")
	}
	if (cfg.JWT == nil) != (cfg.APIKey == nil) {
		return nil, fmt.Errorf("JWT and API key configuration must be set together")
	}

	s := &Server{
		store:          st,
		gen:            gen,
		apiKey:         cfg.APIKey,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = DefaultMaxUploadBytes
	}

	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		rateConfig = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rateConfig)

	if cfg.JWT != nil {
		s.jwtService = NewJWTService(cfg.JWT)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/token", s.handleToken)

	// Cover letters
	s.handle(mux, "POST /cover-letter/save", s.handleCreateCoverLetter)
	s.handle(mux, "GET /cover-letter/versions", s.handleListVersions)
	s.handle(mux, "GET /cover-letter/{version_id}", s.handleGetCoverLetter)
	s.handle(mux, "DELETE /cover-letter/{version_id}", s.handleDeleteCoverLetter)
	s.handle(mux, "GET /cover-letter/{version_id}/save-status", s.handleSaveStatus)
	s.handle(mux, "PUT /cover-letter/{version_id}/save-all", s.handleSaveAll)
	s.handle(mux, "PUT /cover-letter/{version_id}/section", s.handleUpdateSection)
	s.handle(mux, "PUT /cover-letter/{version_id}/section/{section_name}/update-with-description", s.handleUpdateWithDescription)
	s.handle(mux, "GET /cover-letter/{version_id}/section/{section_name}/history", s.handleSectionHistory)
	s.handle(mux, "POST /cover-letter/{version_id}/section/{section_name}/version", s.handleCreateSnapshot)
	s.handle(mux, "POST /cover-letter/{version_id}/section/{section_name}/revert", s.handleRevertSection)

	// Job postings
	s.handle(mux, "GET /job-postings", s.handleListJobPostings)
	s.handle(mux, "GET /job-postings/{id}", s.handleGetJobPosting)
	s.handle(mux, "POST /submit-job-posting", s.handleSubmitJobPosting)
	s.handle(mux, "POST /upload-job-posting", s.handleUploadJobPosting)

	// Generation and context
	s.handle(mux, "POST /generate-cover-letter", s.handleGenerate)
	s.handle(mux, "POST /upload-pdf", s.handleUploadPDF)
	s.handle(mux, "GET /pdf-files", s.handleListPDFFiles)
	s.handle(mux, "POST /debug/context-analysis", s.handleContextAnalysis)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // generation with variations is slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// handle registers a route that requires a bearer token when
// authentication is enabled.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	if s.jwtService == nil {
		mux.Handle(pattern, h)
		return
	}
	mux.Handle(pattern, middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(h))
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// AuthEnabled reports whether routes require a bearer token.
func (s *Server) AuthEnabled() bool {
	return s.jwtService != nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close stops the rate limiter and closes the store.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.store.Close()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s -> %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status code and writes it as an error response.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
	}
	s.errorResponse(w, status, err.Error())
}

// errEmptyBody is returned by decodeJSON for a request without a body.
var errEmptyBody = &ErrValidation{Field: "body", Message: "request body is empty"}

// decodeJSON decodes a bounded JSON request body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return err
		case errors.Is(err, io.EOF):
			return errEmptyBody
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int((info.RetryAfter + time.Second - 1) / time.Second)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] %s %s from %s exceeded limit %d", r.Method, r.URL.Path, s.extractClientID(r), info.Limit)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
