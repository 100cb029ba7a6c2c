// Package auth implements courier's access-control core: password
// verification, bearer token issuance and verification, the HTTP
// authentication gate, and per-resource ownership policy.
//
// # Flow
//
// An inbound request passes through Middleware, which extracts a bearer
// token and, when it verifies, attaches an Identity to the request
// context. The gate never rejects a request on its own: endpoints that
// need an identity wrap their handler in RequireAuth, and endpoints that
// act on a specific resource additionally call one of the Authorize
// functions after fetching the resource and before mutating it.
//
// # Uniform rejection
//
// Verify collapses every token failure (bad signature, malformed
// structure, wrong algorithm) into ErrInvalidToken. The underlying cause
// is logged at debug level but never surfaced to callers, so the
// boundary leaks nothing about which check failed. Password verification
// likewise reports only match/no-match.
//
// # Ownership policy
//
// The policy checks are pure functions over an Identity and a resource
// snapshot. There are exactly two parties to a message, so the checks
// are plain username comparisons: self-access for profile and listing
// routes, sender-or-recipient for reading a message, recipient-only for
// acknowledging one.
package auth
