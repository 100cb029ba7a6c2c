// Package server wires the courier HTTP API: route registration,
// middleware ordering (authentication gate first, per-resource policy in
// the services), JSON request/response shaping, and the mapping from
// service errors to status codes.
//
// The package holds no invariants of its own: it translates between the
// wire and the accounts/messenger services, and guarantees that only an
// error's kind and safe message are serialized to clients.
package server
