// ABOUTME: JWT token issuance and verification for authenticating requests
// ABOUTME: Uses HS256 signing with a process-wide secret and a single rejection outcome

package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single rejection outcome for token verification.
// Tampered, malformed, and wrong-algorithm tokens are indistinguishable to
// callers; the internal cause is only logged.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies bearer tokens carrying an identity claim.
// The signing secret is fixed at construction and read-only thereafter.
type TokenService struct {
	secret []byte
	logger *slog.Logger
}

// NewTokenService creates a token service with the given signing secret.
func NewTokenService(secret []byte) *TokenService {
	return &TokenService{
		secret: secret,
		logger: slog.Default().With("component", "auth"),
	}
}

// Issue creates a signed token for the given identity. The token carries
// only the username in the "sub" claim (no password, no profile fields)
// so it stays valid when the profile changes. No expiry is set.
func (s *TokenService) Issue(identity Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub": identity.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates the token's signature and structure and extracts the
// identity claim. Every failure is reported as ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		s.logger.Debug("token rejected", "cause", err)
		return Identity{}, ErrInvalidToken
	}

	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		s.logger.Debug("token rejected", "cause", "missing sub claim")
		return Identity{}, ErrInvalidToken
	}

	return Identity{Username: sub}, nil
}
