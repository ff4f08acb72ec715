package oauth

import "errors"

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrProviderNotRegistered is returned when no provider is registered under an alias.
	ErrProviderNotRegistered = errors.New("oauth: provider not registered")

	// ErrProviderMisconfigured is returned at startup when a configured provider
	// cannot be constructed or its implementation cannot be resolved.
	ErrProviderMisconfigured = errors.New("oauth: provider misconfigured")

	// ErrTokenExchangeFailed is returned when trading an authorization code
	// for an access token fails.
	ErrTokenExchangeFailed = errors.New("oauth: token exchange failed")

	// ErrProfileFetchFailed is returned when the provider profile cannot be
	// fetched or lacks the provider user id.
	ErrProfileFetchFailed = errors.New("oauth: profile fetch failed")

	// ErrEntropyUnavailable is returned when the random source fails while
	// generating a state token.
	ErrEntropyUnavailable = errors.New("oauth: entropy unavailable")

	// ErrNilResponse is returned when the OAuth provider returns a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrRequestFailed is returned when the OAuth provider returns a non-OK status.
	ErrRequestFailed = errors.New("oauth: request returned non-OK status")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")

	// ErrInvalidConfig is returned when the provider configuration file cannot be parsed.
	ErrInvalidConfig = errors.New("oauth: invalid configuration")
)
