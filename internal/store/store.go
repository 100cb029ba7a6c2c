// ABOUTME: Store interface and data types for courier persistence
// ABOUTME: Defines User, Message structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when trying to register a username that already exists
var ErrDuplicateUser = errors.New("username already taken")

// User represents a registered account. PasswordHash is the bcrypt hash of
// the password and never leaves the store/auth boundary.
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinedAt     time.Time
	LastLoginAt  time.Time
}

// Message represents a single direct message between two users.
// ReadAt is nil until the recipient acknowledges the message; once set it
// is never cleared.
type Message struct {
	ID           string
	FromUsername string
	ToUsername   string
	Body         string
	SentAt       time.Time
	ReadAt       *time.Time
}

// Store defines the interface for user and message persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error

	// Messages
	CreateMessage(ctx context.Context, msg *Message) error
	GetMessage(ctx context.Context, id string) (*Message, error)
	MessagesTo(ctx context.Context, username string) ([]*Message, error)
	MessagesFrom(ctx context.Context, username string) ([]*Message, error)
	MarkMessageRead(ctx context.Context, id string, at time.Time) error

	// Close releases any resources held by the store
	Close() error
}
