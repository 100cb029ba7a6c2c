// ABOUTME: Resource ownership policy for users and messages
// ABOUTME: Pure predicates plus error-returning authorize wrappers for the service layer

package auth

import (
	"errors"

	"github.com/2389/courier/internal/store"
)

// ErrForbidden is returned when an authenticated identity is not entitled
// to act on the target resource. Distinct from an authentication failure:
// the caller is known, just not allowed.
var ErrForbidden = errors.New("forbidden")

// IsSelf reports whether the identity is the subject user of the path.
func IsSelf(identity Identity, subjectUsername string) bool {
	return identity.Username == subjectUsername
}

// CanReadMessage reports whether the identity is a party to the message.
func CanReadMessage(identity Identity, msg *store.Message) bool {
	return identity.Username == msg.FromUsername || identity.Username == msg.ToUsername
}

// CanAckMessage reports whether the identity may mark the message read.
// Only the recipient qualifies; the sender may not self-acknowledge.
func CanAckMessage(identity Identity, msg *store.Message) bool {
	return identity.Username == msg.ToUsername
}

// AuthorizeSelf checks self-access, returning ErrForbidden on violation.
func AuthorizeSelf(identity Identity, subjectUsername string) error {
	if !IsSelf(identity, subjectUsername) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeMessageRead checks read access, returning ErrForbidden on violation.
func AuthorizeMessageRead(identity Identity, msg *store.Message) error {
	if !CanReadMessage(identity, msg) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeMessageAck checks acknowledge access, returning ErrForbidden on violation.
func AuthorizeMessageAck(identity Identity, msg *store.Message) error {
	if !CanAckMessage(identity, msg) {
		return ErrForbidden
	}
	return nil
}
