// Package accounts orchestrates registration and login over the
// credential store and the token service.
//
// Login collapses "no such user" and "wrong password" into the single
// ErrInvalidCredentials outcome, and burns an equivalent bcrypt
// comparison on the unknown-username path so the two failures cost the
// same. A successful authentication updates the last-login timestamp
// exactly once, and only a successful update is followed by token
// issuance, so the two steps appear atomic to the caller.
package accounts
