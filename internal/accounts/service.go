// ABOUTME: Registration and login orchestration over the credential store
// ABOUTME: Uniform invalid-credentials outcome and last-login stamping before token issuance

package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/courier/internal/auth"
	"github.com/2389/courier/internal/store"
)

// ErrInvalidCredentials is the single observable outcome for a failed
// login. An unknown username and a wrong password are indistinguishable
// to the caller, which prevents username enumeration.
var ErrInvalidCredentials = errors.New("invalid username/password")

// ErrUsernameTaken is returned when registering a username that exists.
var ErrUsernameTaken = errors.New("username already taken")

// RegisterParams carries the full profile for a new account.
type RegisterParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Service handles account registration and authentication.
type Service struct {
	store  store.Store
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewService creates an accounts service.
func NewService(st store.Store, tokens *auth.TokenService) *Service {
	return &Service{
		store:  st,
		tokens: tokens,
		logger: slog.Default().With("component", "accounts"),
	}
}

// Register creates a new account and returns a token for it. The join and
// last-login timestamps are both set at creation, so registration counts
// as the account's first authentication event.
// Returns ErrUsernameTaken if the username already exists; the earlier
// registration is left untouched.
func (s *Service) Register(ctx context.Context, params RegisterParams) (string, error) {
	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &store.User{
		Username:     params.Username,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Phone:        params.Phone,
		JoinedAt:     now,
		LastLoginAt:  now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return "", ErrUsernameTaken
		}
		return "", fmt.Errorf("creating user: %w", err)
	}

	token, err := s.tokens.Issue(auth.Identity{Username: user.Username})
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user registered", "username", user.Username)
	return token, nil
}

// Login verifies the credentials and returns a token. The last-login
// timestamp is stamped exactly once per success, before token issuance;
// if the stamp fails the login fails and no token is produced. Failed
// attempts never touch the timestamp.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a comparison so unknown usernames cost the same as
			// password mismatches.
			auth.BurnPasswordCheck(password)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.logger.Debug("login rejected", "username", username)
		return "", ErrInvalidCredentials
	}

	if err := s.store.UpdateLastLogin(ctx, username, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("updating last login: %w", err)
	}

	token, err := s.tokens.Issue(auth.Identity{Username: user.Username})
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in", "username", username)
	return token, nil
}

// Profile returns the stored user record for the given username.
// Returns store.ErrNotFound if the user doesn't exist.
func (s *Service) Profile(ctx context.Context, username string) (*store.User, error) {
	return s.store.GetUser(ctx, username)
}

// ListProfiles returns all user records ordered by username.
func (s *Service) ListProfiles(ctx context.Context) ([]*store.User, error) {
	return s.store.ListUsers(ctx)
}
