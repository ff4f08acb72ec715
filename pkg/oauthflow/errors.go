package oauthflow

import "errors"

var (
	// ErrStateMismatch is returned when the callback state or alias does not
	// match the authorization state stored in the session.
	ErrStateMismatch = errors.New("oauthflow: state mismatch")

	// ErrStateMissing accompanies ErrStateMismatch when the session holds no
	// authorization state at all.
	ErrStateMissing = errors.New("oauthflow: no authorization state in session")
)
