package oauthlink

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/oauthlink/pkg/logger"
	"github.com/dmitrymomot/oauthlink/pkg/oauth"
	"github.com/dmitrymomot/oauthlink/pkg/oauthflow"
)

// Session is the host session as seen by the manager.
// *session.Session satisfies it.
type Session interface {
	oauthflow.Session
	AuthenticatedUserID() string
}

// Manager exposes the two entry points a host wires to HTTP routes.
type Manager struct {
	flow     *oauthflow.Orchestrator
	auth     *Authenticator
	states   oauth.StateGenerator
	onLogin  LoginHook
	log      *slog.Logger
	flowOpts []oauthflow.Option
}

// New creates a manager over a provider registry and the link and user stores.
func New(registry *oauth.Registry, links IdentityStore, users UserStore, opts ...Option) *Manager {
	m := &Manager{log: logger.NewNope()}
	for _, opt := range opts {
		opt(m)
	}

	flowOpts := append([]oauthflow.Option{oauthflow.WithLogger(m.log)}, m.flowOpts...)
	m.flow = oauthflow.New(registry, m.states, flowOpts...)
	m.auth = NewAuthenticator(links, users, m.log)
	return m
}

// Initiate records a fresh authorization state in sess and returns the
// provider's authorization URL for alias.
func (m *Manager) Initiate(ctx context.Context, sess Session, alias string) (string, error) {
	return m.flow.Initiate(ctx, sess, alias)
}

// HandleCallback verifies the provider callback, reconciles the identity and
// returns the user id the host should mark as signed in.
func (m *Manager) HandleCallback(ctx context.Context, sess Session, alias, state, code string) (string, error) {
	ident, err := m.flow.Complete(ctx, sess, alias, state, code)
	if err != nil {
		return "", err
	}

	ctx = logger.WithProvider(ctx, alias)
	userID, branch, err := m.auth.Authenticate(ctx, sess.AuthenticatedUserID(), ident)
	if err != nil {
		m.log.ErrorContext(ctx, "oauth reconciliation failed", slog.String("error", err.Error()))
		return "", err
	}

	if m.onLogin != nil {
		if err := m.onLogin(ctx, userID, ident); err != nil {
			return "", errors.Join(ErrLoginRejected, err)
		}
	}

	m.log.InfoContext(ctx, "oauth login",
		slog.String("user_id", userID),
		slog.String("branch", branch.String()),
	)
	return userID, nil
}

// Abandon drops the pending authorization state when the provider redirects
// back with an error instead of a code.
func (m *Manager) Abandon(ctx context.Context, sess Session) error {
	return m.flow.Abandon(ctx, sess)
}

// Authenticator returns the reconciliation engine used by the manager.
func (m *Manager) Authenticator() *Authenticator {
	return m.auth
}
