// ABOUTME: HTTP handlers for auth, user, and message endpoints
// ABOUTME: Thin request parsing and JSON shaping over the service layer

package server

import (
	"net/http"
	"time"

	"github.com/2389/courier/internal/accounts"
	"github.com/2389/courier/internal/auth"
	"github.com/2389/courier/internal/store"
)

// LoginRequest is the JSON request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the JSON request body for POST /auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// TokenResponse is the JSON response for successful authentication.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserSummary is the compact user representation used in listings and
// message envelopes.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UserDetail is the full user representation for GET /users/{username}.
type UserDetail struct {
	UserSummary
	JoinAt      string `json:"join_at"`
	LastLoginAt string `json:"last_login_at"`
}

// SendMessageRequest is the JSON request body for POST /messages.
type SendMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// MessageResponse is the JSON representation of a message. FromUser and
// ToUser are populated where the endpoint's shape calls for them.
type MessageResponse struct {
	ID           string       `json:"id"`
	Body         string       `json:"body"`
	SentAt       string       `json:"sent_at"`
	ReadAt       *string      `json:"read_at"`
	FromUsername string       `json:"from_username,omitempty"`
	ToUsername   string       `json:"to_username,omitempty"`
	FromUser     *UserSummary `json:"from_user,omitempty"`
	ToUser       *UserSummary `json:"to_user,omitempty"`
}

func userSummary(u *store.User) *UserSummary {
	return &UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

func messageResponse(m *store.Message) MessageResponse {
	resp := MessageResponse{
		ID:     m.ID,
		Body:   m.Body,
		SentAt: m.SentAt.Format(time.RFC3339),
	}
	if m.ReadAt != nil {
		readAt := m.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &readAt
	}
	return resp
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	token, err := s.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password required"})
		return
	}

	token, err := s.accounts.Register(r.Context(), accounts.RegisterParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, TokenResponse{Token: token})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.accounts.ListProfiles(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summaries := make([]*UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, userSummary(u))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"users": summaries})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())
	username := r.PathValue("username")

	if err := auth.AuthorizeSelf(identity, username); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.accounts.Profile(r.Context(), username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	detail := UserDetail{
		UserSummary: *userSummary(user),
		JoinAt:      user.JoinedAt.Format(time.RFC3339),
		LastLoginAt: user.LastLoginAt.Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"user": detail})
}

func (s *Server) handleMessagesTo(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())
	username := r.PathValue("username")

	messages, err := s.messenger.Inbox(r.Context(), identity, username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.messageEnvelopes(r, messages, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"messages": resp})
}

func (s *Server) handleMessagesFrom(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())
	username := r.PathValue("username")

	messages, err := s.messenger.Outbox(r.Context(), identity, username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.messageEnvelopes(r, messages, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"messages": resp})
}

// messageEnvelopes shapes a message list, attaching the counterparty's
// profile: the sender for inbox listings, the recipient for outbox ones.
func (s *Server) messageEnvelopes(r *http.Request, messages []*store.Message, inbox bool) ([]MessageResponse, error) {
	// Profiles repeat across messages; fetch each counterparty once.
	profiles := make(map[string]*UserSummary)
	counterparty := func(m *store.Message) string {
		if inbox {
			return m.FromUsername
		}
		return m.ToUsername
	}

	resp := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		username := counterparty(m)
		profile, ok := profiles[username]
		if !ok {
			user, err := s.accounts.Profile(r.Context(), username)
			if err != nil {
				return nil, err
			}
			profile = userSummary(user)
			profiles[username] = profile
		}

		envelope := messageResponse(m)
		if inbox {
			envelope.FromUser = profile
		} else {
			envelope.ToUser = profile
		}
		resp = append(resp, envelope)
	}
	return resp, nil
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())
	id := r.PathValue("id")

	msg, err := s.messenger.Get(r.Context(), identity, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fromUser, err := s.accounts.Profile(r.Context(), msg.FromUsername)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	toUser, err := s.accounts.Profile(r.Context(), msg.ToUsername)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := messageResponse(msg)
	resp.FromUser = userSummary(fromUser)
	resp.ToUser = userSummary(toUser)
	s.writeJSON(w, http.StatusOK, map[string]any{"message": resp})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	var req SendMessageRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if req.ToUsername == "" || req.Body == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to_username and body required"})
		return
	}

	msg, err := s.messenger.Send(r.Context(), identity, req.ToUsername, req.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := messageResponse(msg)
	resp.FromUsername = msg.FromUsername
	resp.ToUsername = msg.ToUsername
	s.writeJSON(w, http.StatusCreated, map[string]any{"message": resp})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())
	id := r.PathValue("id")

	msg, err := s.messenger.MarkRead(r.Context(), identity, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	readAt := ""
	if msg.ReadAt != nil {
		readAt = msg.ReadAt.Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": map[string]string{"id": msg.ID, "read_at": readAt},
	})
}
