// ABOUTME: Tests for the SQLite store's user operations
// ABOUTME: Covers creation, duplicates, lookup, listing, and last-login updates

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func testUser(username string) *User {
	now := time.Now().UTC().Truncate(time.Second)
	return &User{
		Username:     username,
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceho",
		FirstName:    "Test",
		LastName:     "User",
		Phone:        "+15555550100",
		JoinedAt:     now,
		LastLoginAt:  now,
	}
}

func TestStore_CreateUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.CreateUser(ctx, testUser("alice"))
	require.NoError(t, err)

	retrieved, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", retrieved.Username)
	assert.Equal(t, "Test", retrieved.FirstName)
	assert.False(t, retrieved.JoinedAt.IsZero())
}

func TestStore_CreateUser_Duplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := testUser("alice")
	first.FirstName = "Alice"
	require.NoError(t, store.CreateUser(ctx, first))

	err := store.CreateUser(ctx, testUser("alice"))
	assert.ErrorIs(t, err, ErrDuplicateUser)

	// First registration must remain untouched
	retrieved, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", retrieved.FirstName)
}

func TestStore_GetUser_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetUser(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListUsers(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("carol")))
	require.NoError(t, store.CreateUser(ctx, testUser("alice")))
	require.NoError(t, store.CreateUser(ctx, testUser("bob")))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "carol", users[2].Username)
}

func TestStore_UpdateLastLogin(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := testUser("alice")
	require.NoError(t, store.CreateUser(ctx, user))

	later := user.LastLoginAt.Add(time.Hour)
	require.NoError(t, store.UpdateLastLogin(ctx, "alice", later))

	retrieved, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, retrieved.LastLoginAt.Equal(later),
		"last_login_at = %v, want %v", retrieved.LastLoginAt, later)
	assert.True(t, retrieved.LastLoginAt.After(user.JoinedAt))
}

func TestStore_UpdateLastLogin_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.UpdateLastLogin(ctx, "nonexistent", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}
