package oauthlink

import "errors"

var (
	// ErrInvalidIdentity is returned when an identity lacks its provider alias
	// or provider user id.
	ErrInvalidIdentity = errors.New("oauthlink: identity missing provider or provider user id")

	// ErrReconcileFailed wraps storage failures raised while resolving an
	// identity to a local user.
	ErrReconcileFailed = errors.New("oauthlink: failed to reconcile identity")

	// ErrLoginRejected is returned when the login hook refuses a resolved user.
	ErrLoginRejected = errors.New("oauthlink: login rejected")
)
