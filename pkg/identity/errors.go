package identity

import "errors"

var (
	// ErrNotFound is returned when no link matches the lookup.
	ErrNotFound = errors.New("identity: link not found")

	// ErrDuplicateLink is returned by Create when the provider identity is
	// already linked, typically because a concurrent callback won the race.
	ErrDuplicateLink = errors.New("identity: provider identity already linked")

	// ErrUnknownUser is returned by Create when the owning user does not exist.
	ErrUnknownUser = errors.New("identity: unknown user")

	// ErrInvalidLink is returned when required link fields are empty.
	ErrInvalidLink = errors.New("identity: invalid link")
)
