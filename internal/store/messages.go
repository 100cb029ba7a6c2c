// ABOUTME: Message persistence operations for the SQLite store
// ABOUTME: Covers sending, lookup, inbox/outbox listings, and read receipts

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateMessage inserts a new message.
// An ID and sent-at timestamp are assigned if not already set.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, from_username, to_username, body, sent_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.FromUsername, msg.ToUsername, msg.Body, msg.SentAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	s.logger.Debug("created message", "id", msg.ID, "from", msg.FromUsername, "to", msg.ToUsername)
	return nil
}

// GetMessage retrieves a message by ID.
// Returns ErrNotFound if the message doesn't exist.
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*Message, error) {
	var m Message
	var readAt sql.NullString
	var sentAtStr string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, from_username, to_username, body, sent_at, read_at
		FROM messages WHERE id = ?
	`, id).Scan(&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &sentAtStr, &readAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying message: %w", err)
	}

	m.SentAt, err = time.Parse(time.RFC3339Nano, sentAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing sent_at: %w", err)
	}
	if readAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, readAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing read_at: %w", err)
		}
		m.ReadAt = &t
	}

	return &m, nil
}

// MessagesTo lists messages addressed to the given user, newest first.
func (s *SQLiteStore) MessagesTo(ctx context.Context, username string) ([]*Message, error) {
	return s.listMessages(ctx, `to_username = ?`, username)
}

// MessagesFrom lists messages sent by the given user, newest first.
func (s *SQLiteStore) MessagesFrom(ctx context.Context, username string) ([]*Message, error) {
	return s.listMessages(ctx, `from_username = ?`, username)
}

func (s *SQLiteStore) listMessages(ctx context.Context, where string, arg any) ([]*Message, error) {
	query := `
		SELECT id, from_username, to_username, body, sent_at, read_at
		FROM messages WHERE ` + where + ` ORDER BY sent_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*Message
	for rows.Next() {
		var m Message
		var readAt sql.NullString
		var sentAtStr string
		if err := rows.Scan(&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &sentAtStr, &readAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.SentAt, _ = time.Parse(time.RFC3339Nano, sentAtStr)
		if readAt.Valid {
			t, _ := time.Parse(time.RFC3339Nano, readAt.String)
			m.ReadAt = &t
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// MarkMessageRead stamps a message's read time. The stamp only applies when
// the message is still unread; marking an already-read message is a no-op
// success and the original read time is preserved.
func (s *SQLiteStore) MarkMessageRead(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE messages SET read_at = ? WHERE id = ? AND read_at IS NULL
	`, at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("marking message read: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		// Check if it exists at all
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM messages WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("checking message existence: %w", err)
		}
		// Already read, that's fine
	}
	return nil
}
