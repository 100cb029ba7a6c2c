// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject storage failures

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
// The Err fields, when set, are returned by the corresponding operation
// so callers can exercise storage-failure paths.
type MockStore struct {
	mu       sync.RWMutex
	users    map[string]*User    // keyed by username
	messages map[string]*Message // keyed by message ID

	CreateUserErr      error
	GetUserErr         error
	ListUsersErr       error
	UpdateLastLoginErr error
	CreateMessageErr   error
	GetMessageErr      error
	MarkReadErr        error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:    make(map[string]*User),
		messages: make(map[string]*Message),
	}
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	if m.CreateUserErr != nil {
		return m.CreateUserErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Username]; ok {
		return ErrDuplicateUser
	}

	// Make a copy to avoid external modification
	u := *user
	m.users[u.Username] = &u
	return nil
}

// GetUser retrieves a user by username.
func (m *MockStore) GetUser(ctx context.Context, username string) (*User, error) {
	if m.GetUserErr != nil {
		return nil, m.GetUserErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy
	result := *u
	return &result, nil
}

// ListUsers returns all users ordered by username.
func (m *MockStore) ListUsers(ctx context.Context) ([]*User, error) {
	if m.ListUsersErr != nil {
		return nil, m.ListUsersErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		result := *u
		users = append(users, &result)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}

// UpdateLastLogin stamps the user's last login time.
func (m *MockStore) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	if m.UpdateLastLoginErr != nil {
		return m.UpdateLastLoginErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = at
	return nil
}

// CreateMessage stores a new message, assigning defaults like the SQLite store.
func (m *MockStore) CreateMessage(ctx context.Context, msg *Message) error {
	if m.CreateMessageErr != nil {
		return m.CreateMessageErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.ID == "" {
		msg.ID = "mock-msg-" + time.Now().Format("150405.000000000")
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	msgCopy := *msg
	m.messages[msgCopy.ID] = &msgCopy
	return nil
}

// GetMessage retrieves a message by ID.
func (m *MockStore) GetMessage(ctx context.Context, id string) (*Message, error) {
	if m.GetMessageErr != nil {
		return nil, m.GetMessageErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	msg, ok := m.messages[id]
	if !ok {
		return nil, ErrNotFound
	}

	result := *msg
	return &result, nil
}

// MessagesTo lists messages addressed to the given user, newest first.
func (m *MockStore) MessagesTo(ctx context.Context, username string) ([]*Message, error) {
	return m.listMessages(func(msg *Message) bool { return msg.ToUsername == username })
}

// MessagesFrom lists messages sent by the given user, newest first.
func (m *MockStore) MessagesFrom(ctx context.Context, username string) ([]*Message, error) {
	return m.listMessages(func(msg *Message) bool { return msg.FromUsername == username })
}

func (m *MockStore) listMessages(match func(*Message) bool) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var messages []*Message
	for _, msg := range m.messages {
		if match(msg) {
			result := *msg
			messages = append(messages, &result)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].SentAt.After(messages[j].SentAt)
	})
	return messages, nil
}

// MarkMessageRead stamps a message's read time, preserving any existing stamp.
func (m *MockStore) MarkMessageRead(ctx context.Context, id string, at time.Time) error {
	if m.MarkReadErr != nil {
		return m.MarkReadErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.messages[id]
	if !ok {
		return ErrNotFound
	}
	if msg.ReadAt == nil {
		stamp := at
		msg.ReadAt = &stamp
	}
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
