// Package messenger implements message operations behind the ownership
// policy: send, read, inbox/outbox listings, and read acknowledgment.
//
// Operations on an existing message follow a fixed order: fetch the
// message, authorize the identity against the snapshot, then mutate.
// A policy violation therefore leaves no observable state change.
package messenger
