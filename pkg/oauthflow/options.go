package oauthflow

import (
	"log/slog"

	"golang.org/x/oauth2"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for security and provider failures.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithAuthCodeOptions appends options to every authorization URL,
// e.g. oauth2.AccessTypeOffline to request refresh tokens.
func WithAuthCodeOptions(opts ...oauth2.AuthCodeOption) Option {
	return func(o *Orchestrator) {
		o.authOpts = append(o.authOpts, opts...)
	}
}

// WithSessionKeys overrides the session keys holding the authorization state.
// Empty values keep the defaults.
func WithSessionKeys(aliasKey, stateKey string) Option {
	return func(o *Orchestrator) {
		if aliasKey != "" {
			o.aliasKey = aliasKey
		}
		if stateKey != "" {
			o.stateKey = stateKey
		}
	}
}
