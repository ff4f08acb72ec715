package server

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/oauthlink/pkg/oauth"
	"github.com/dmitrymomot/oauthlink/pkg/oauthflow"
)

// ErrProviderDenied is returned when the provider redirects back with an
// error instead of an authorization code.
var ErrProviderDenied = errors.New("server: provider denied authorization")

// HTTPError is an error with the status and user-facing message to render.
type HTTPError struct {
	Err     error
	Message string
	Code    int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

// NewHTTPError creates an HTTPError wrapping err.
func NewHTTPError(code int, message string, err error) *HTTPError {
	return &HTTPError{Code: code, Message: message, Err: err}
}

// AsHTTPError maps err to an HTTPError. Errors that already are one are
// returned unchanged; anything unrecognized becomes a 500.
func AsHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, oauth.ErrProviderNotRegistered):
		return NewHTTPError(http.StatusNotFound, "Unknown login provider", err)
	case errors.Is(err, oauthflow.ErrStateMismatch):
		return NewHTTPError(http.StatusForbidden, "Login session expired or invalid, please try again", err)
	case errors.Is(err, ErrProviderDenied):
		return NewHTTPError(http.StatusBadRequest, "Login was cancelled at the provider", err)
	case errors.Is(err, oauth.ErrTokenExchangeFailed), errors.Is(err, oauth.ErrProfileFetchFailed):
		return NewHTTPError(http.StatusBadGateway, "Login provider is unavailable", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err)
	}
}
