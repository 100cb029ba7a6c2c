// ABOUTME: HTTP server wiring for the courier API
// ABOUTME: Routes, middleware ordering, and error-to-status mapping

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/2389/courier/internal/accounts"
	"github.com/2389/courier/internal/auth"
	"github.com/2389/courier/internal/messenger"
	"github.com/2389/courier/internal/store"
)

// Server exposes the accounts and messenger services over HTTP JSON.
// It is thin glue: request parsing, middleware ordering, and status
// mapping. All invariants live in the services it wraps.
type Server struct {
	accounts  *accounts.Service
	messenger *messenger.Service
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// New creates a Server around the given services.
func New(acct *accounts.Service, msgr *messenger.Service, tokens *auth.TokenService, logger *slog.Logger) *Server {
	return &Server{
		accounts:  acct,
		messenger: msgr,
		tokens:    tokens,
		logger:    logger.With("component", "server"),
	}
}

// Routes builds the route table. Every route passes through the
// authentication gate; protected routes additionally require an identity.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Anonymous endpoints: login and register require no identity
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/register", s.handleRegister)

	// Protected endpoints
	mux.HandleFunc("GET /users", auth.RequireAuth(s.handleListUsers))
	mux.HandleFunc("GET /users/{username}", auth.RequireAuth(s.handleGetUser))
	mux.HandleFunc("GET /users/{username}/to", auth.RequireAuth(s.handleMessagesTo))
	mux.HandleFunc("GET /users/{username}/from", auth.RequireAuth(s.handleMessagesFrom))
	mux.HandleFunc("GET /messages/{id}", auth.RequireAuth(s.handleGetMessage))
	mux.HandleFunc("POST /messages", auth.RequireAuth(s.handleSendMessage))
	mux.HandleFunc("POST /messages/{id}/read", auth.RequireAuth(s.handleMarkRead))

	return auth.Middleware(s.tokens)(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON serializes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// writeError maps a service error to a status code and a safe message.
// Internal detail (raw storage errors, stack context) is logged here and
// never serialized to the caller.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var msg string

	switch {
	case errors.Is(err, accounts.ErrInvalidCredentials):
		status = http.StatusBadRequest
		msg = "invalid username/password"
	case errors.Is(err, accounts.ErrUsernameTaken):
		status = http.StatusConflict
		msg = "username already taken"
	case errors.Is(err, auth.ErrForbidden):
		status = http.StatusForbidden
		msg = "forbidden"
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		msg = "not found"
	default:
		status = http.StatusInternalServerError
		msg = "internal error"
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	s.writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON parses the request body into v, reporting a 400 on failure.
// Returns false if the response has already been written.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}
