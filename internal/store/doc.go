// Package store provides persistent storage for courier using SQLite.
//
// # Architecture
//
// The Store interface covers the two record kinds the service owns:
//
//   - User: account with bcrypt password hash, profile fields, and
//     join/last-login timestamps
//   - Message: a direct message between two users with a nullable
//     read receipt
//
// SQLiteStore implements the interface on modernc.org/sqlite (CGO-free).
// MockStore is an in-memory implementation for tests, with injectable
// errors for exercising failure paths.
//
// # Semantics
//
//   - CreateUser returns ErrDuplicateUser on username collision; the
//     first registration is left untouched.
//   - UpdateLastLogin overwrites the previous stamp; concurrent logins
//     race benignly (last write wins, values are wall-clock monotone).
//   - MarkMessageRead only stamps unread messages; re-marking is a
//     successful no-op that preserves the original read time.
//
// Lookup misses are reported as ErrNotFound, distinct from query errors,
// so callers can tell "no such row" from storage trouble.
package store
