// ABOUTME: Message operations gated by the ownership policy
// ABOUTME: Fetches the resource, authorizes against it, then applies the operation

package messenger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/courier/internal/auth"
	"github.com/2389/courier/internal/store"
)

// Service handles sending, reading, and acknowledging messages. Every
// operation that targets an existing message fetches it first, evaluates
// the ownership policy against the snapshot, and only then touches
// storage, so an authorization violation leaves no partial state.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService creates a messenger service.
func NewService(st store.Store) *Service {
	return &Service{
		store:  st,
		logger: slog.Default().With("component", "messenger"),
	}
}

// Send creates a message from the authenticated sender to the named
// recipient. Returns store.ErrNotFound (wrapped) if the recipient does
// not exist.
func (s *Service) Send(ctx context.Context, sender auth.Identity, toUsername, body string) (*store.Message, error) {
	if _, err := s.store.GetUser(ctx, toUsername); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("recipient %q: %w", toUsername, store.ErrNotFound)
		}
		return nil, fmt.Errorf("looking up recipient: %w", err)
	}

	msg := &store.Message{
		FromUsername: sender.Username,
		ToUsername:   toUsername,
		Body:         body,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	s.logger.Info("message sent", "id", msg.ID, "from", msg.FromUsername, "to", msg.ToUsername)
	return msg, nil
}

// Get retrieves a message for the authenticated identity. Only the sender
// or the recipient may read it; anyone else gets auth.ErrForbidden.
func (s *Service) Get(ctx context.Context, identity auth.Identity, id string) (*store.Message, error) {
	msg, err := s.store.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.AuthorizeMessageRead(identity, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// MarkRead stamps the message's read receipt on behalf of the
// authenticated identity. Only the recipient may acknowledge; the policy
// is evaluated against the fetched message before any mutation, so a
// forbidden caller observes no state change. Re-marking an already-read
// message succeeds and preserves the original stamp.
func (s *Service) MarkRead(ctx context.Context, identity auth.Identity, id string) (*store.Message, error) {
	msg, err := s.store.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.AuthorizeMessageAck(identity, msg); err != nil {
		return nil, err
	}

	if err := s.store.MarkMessageRead(ctx, id, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("marking message read: %w", err)
	}

	// Re-read for the authoritative read_at (first stamp wins)
	marked, err := s.store.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("message read", "id", id, "by", identity.Username)
	return marked, nil
}

// Inbox lists messages sent to the subject user, newest first. Only the
// subject themself may list their inbox.
func (s *Service) Inbox(ctx context.Context, identity auth.Identity, username string) ([]*store.Message, error) {
	if err := auth.AuthorizeSelf(identity, username); err != nil {
		return nil, err
	}
	return s.store.MessagesTo(ctx, username)
}

// Outbox lists messages sent by the subject user, newest first. Only the
// subject themself may list their outbox.
func (s *Service) Outbox(ctx context.Context, identity auth.Identity, username string) ([]*store.Message, error) {
	if err := auth.AuthorizeSelf(identity, username); err != nil {
		return nil, err
	}
	return s.store.MessagesFrom(ctx, username)
}
