// ABOUTME: User persistence operations for the SQLite store
// ABOUTME: Covers account creation, lookup, listing, and last-login updates

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateUser inserts a new user record.
// Returns ErrDuplicateUser if the username is already taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, password_hash, first_name, last_name, phone, joined_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinedAt.UTC().Format(time.RFC3339Nano),
		user.LastLoginAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "username", user.Username)
	return nil
}

// GetUser retrieves a user by username.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT username, password_hash, first_name, last_name, phone, joined_at, last_login_at
		FROM users
		WHERE username = ?
	`

	var user User
	var joinedAtStr, lastLoginAtStr string

	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&joinedAtStr,
		&lastLoginAtStr,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.JoinedAt, err = time.Parse(time.RFC3339Nano, joinedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing joined_at: %w", err)
	}

	user.LastLoginAt, err = time.Parse(time.RFC3339Nano, lastLoginAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing last_login_at: %w", err)
	}

	return &user, nil
}

// ListUsers returns all users ordered by username.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	query := `
		SELECT username, password_hash, first_name, last_name, phone, joined_at, last_login_at
		FROM users
		ORDER BY username
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*User
	for rows.Next() {
		var user User
		var joinedAtStr, lastLoginAtStr string
		if err := rows.Scan(
			&user.Username,
			&user.PasswordHash,
			&user.FirstName,
			&user.LastName,
			&user.Phone,
			&joinedAtStr,
			&lastLoginAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		user.JoinedAt, _ = time.Parse(time.RFC3339Nano, joinedAtStr)
		user.LastLoginAt, _ = time.Parse(time.RFC3339Nano, lastLoginAtStr)
		users = append(users, &user)
	}
	return users, rows.Err()
}

// UpdateLastLogin stamps the user's last login time.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = ? WHERE username = ?
	`, at.UTC().Format(time.RFC3339Nano), username)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated last login", "username", username)
	return nil
}
