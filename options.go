package oauthlink

import (
	"context"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauthlink/pkg/oauth"
	"github.com/dmitrymomot/oauthlink/pkg/oauthflow"
)

// LoginHook runs after an identity has been resolved to userID.
// A non-nil error fails the callback.
type LoginHook func(ctx context.Context, userID string, ident *oauth.Identity) error

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used by the manager and its authenticator.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithStateGenerator replaces the default crypto/rand state generator.
func WithStateGenerator(g oauth.StateGenerator) Option {
	return func(m *Manager) {
		if g != nil {
			m.states = g
		}
	}
}

// WithLoginHook registers a hook invoked after every successful reconciliation.
func WithLoginHook(h LoginHook) Option {
	return func(m *Manager) {
		m.onLogin = h
	}
}

// WithAuthCodeOptions adds options to every authorization URL,
// e.g. oauth2.AccessTypeOffline.
func WithAuthCodeOptions(opts ...oauth2.AuthCodeOption) Option {
	return func(m *Manager) {
		m.flowOpts = append(m.flowOpts, oauthflow.WithAuthCodeOptions(opts...))
	}
}

// WithSessionKeys overrides the session keys holding the authorization state.
func WithSessionKeys(aliasKey, stateKey string) Option {
	return func(m *Manager) {
		m.flowOpts = append(m.flowOpts, oauthflow.WithSessionKeys(aliasKey, stateKey))
	}
}
