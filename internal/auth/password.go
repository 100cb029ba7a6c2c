// ABOUTME: Password hashing and verification using bcrypt
// ABOUTME: Keeps the miss path timing-equivalent to the match path

package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash used to equalize timing when there is
// no stored hash to compare against (e.g. unknown username).
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword produces a salted bcrypt hash suitable for storage.
// Each call salts freshly, so hashing the same password twice yields
// different encodings.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
// A malformed stored hash verifies as false rather than erroring; bcrypt's
// comparison is constant-time over the digest.
func VerifyPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

// BurnPasswordCheck performs a bcrypt comparison against a throwaway hash.
// Called on the unknown-username path so that lookup misses cost the same
// as password mismatches.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
