// ABOUTME: Authenticated identity and its propagation through request context
// ABOUTME: Provides WithIdentity/FromContext for handlers downstream of the gate

package auth

import (
	"context"
)

// Identity is the authenticated principal. The username is the primary key
// into the credential store and the only claim a token carries.
type Identity struct {
	Username string
}

// identityKey is the key type for storing an Identity in context.Context.
type identityKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// FromContext retrieves the Identity from the context. The second return
// is false when the request was not authenticated.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// MustFromContext retrieves the Identity from the context, panicking if not
// present. For handlers that are only reachable behind RequireAuth.
func MustFromContext(ctx context.Context) Identity {
	identity, ok := FromContext(ctx)
	if !ok {
		panic("auth: Identity not found in context")
	}
	return identity
}
