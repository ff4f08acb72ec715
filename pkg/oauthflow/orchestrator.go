package oauthflow

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauthlink/pkg/logger"
	"github.com/dmitrymomot/oauthlink/pkg/oauth"
)

// Default session keys for the authorization state.
const (
	DefaultAliasKey = "oauth.alias"
	DefaultStateKey = "oauth.state"
)

// Session is the slice of a host session the flow needs.
// *session.Session satisfies it.
type Session interface {
	GetValue(key string) (string, bool)
	SetValue(key, val string)
	DeleteValue(key string)
}

// Claimer is implemented by sessions backed by shared storage. ClaimValues
// removes keys from the stored session and returns the values that were
// still there, so two requests holding copies of one session cannot both
// obtain the same value. Complete prefers it over GetValue/DeleteValue.
type Claimer interface {
	ClaimValues(ctx context.Context, keys ...string) (map[string]string, error)
}

// Orchestrator runs Initiate and Complete against a provider registry.
// It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	registry *oauth.Registry
	states   oauth.StateGenerator
	log      *slog.Logger
	aliasKey string
	stateKey string
	authOpts []oauth2.AuthCodeOption
}

// New creates an orchestrator. A nil state generator selects
// oauth.NewStateGenerator().
func New(registry *oauth.Registry, states oauth.StateGenerator, opts ...Option) *Orchestrator {
	if states == nil {
		states = oauth.NewStateGenerator()
	}
	o := &Orchestrator{
		registry: registry,
		states:   states,
		log:      logger.NewNope(),
		aliasKey: DefaultAliasKey,
		stateKey: DefaultStateKey,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Initiate returns the provider authorization URL for alias and records the
// issued state in sess. Nothing is written to sess when alias is unknown or
// state generation fails.
func (o *Orchestrator) Initiate(ctx context.Context, sess Session, alias string) (string, error) {
	provider, err := o.registry.Get(alias)
	if err != nil {
		return "", err
	}

	state, err := o.states.GenerateState()
	if err != nil {
		o.log.ErrorContext(ctx, "generate oauth state", slog.String("provider", alias), slog.String("error", err.Error()))
		return "", err
	}

	sess.SetValue(o.aliasKey, alias)
	sess.SetValue(o.stateKey, state)

	return provider.AuthCodeURL(state, o.authOpts...), nil
}

// Complete verifies the callback against the stored authorization state and,
// on success, exchanges code and fetches the normalized identity.
//
// The stored state is removed before comparison. On mismatch no provider
// call is made and the error wraps ErrStateMismatch. When sess is a Claimer
// the removal happens in the backing store and a storage error is returned
// as is.
func (o *Orchestrator) Complete(ctx context.Context, sess Session, alias, state, code string) (*oauth.Identity, error) {
	ctx = logger.WithProvider(ctx, alias)

	storedAlias, storedState, ok, err := o.consume(ctx, sess)
	if err != nil {
		o.log.ErrorContext(ctx, "claim oauth state", slog.String("error", err.Error()))
		return nil, err
	}
	if !ok {
		o.log.WarnContext(ctx, "oauth callback without authorization state")
		return nil, errors.Join(ErrStateMismatch, ErrStateMissing)
	}

	if !equal(storedAlias, alias) || !equal(storedState, state) {
		o.log.WarnContext(ctx, "oauth state mismatch", slog.String("expected_provider", storedAlias))
		return nil, ErrStateMismatch
	}

	provider, err := o.registry.Get(alias)
	if err != nil {
		return nil, err
	}

	token, err := provider.Exchange(ctx, code)
	if err != nil {
		o.log.ErrorContext(ctx, "oauth code exchange failed", slog.String("error", err.Error()))
		return nil, err
	}

	ident, err := provider.FetchIdentity(ctx, token)
	if err != nil {
		o.log.ErrorContext(ctx, "oauth profile fetch failed", slog.String("error", err.Error()))
		return nil, err
	}
	if ident == nil {
		return nil, errors.Join(oauth.ErrProfileFetchFailed, fmt.Errorf("provider %q returned no identity", alias))
	}

	out := ident.WithProvider(alias)
	return &out, nil
}

// Abandon discards the pending authorization state, for callbacks where the
// provider reports an error instead of a code.
func (o *Orchestrator) Abandon(ctx context.Context, sess Session) error {
	_, _, _, err := o.consume(ctx, sess)
	return err
}

// consume reads and deletes the stored authorization state.
func (o *Orchestrator) consume(ctx context.Context, sess Session) (alias, state string, ok bool, err error) {
	var hasAlias, hasState bool
	if c, isClaimer := sess.(Claimer); isClaimer {
		vals, err := c.ClaimValues(ctx, o.aliasKey, o.stateKey)
		if err != nil {
			return "", "", false, err
		}
		alias, hasAlias = vals[o.aliasKey]
		state, hasState = vals[o.stateKey]
	} else {
		alias, hasAlias = sess.GetValue(o.aliasKey)
		state, hasState = sess.GetValue(o.stateKey)
		sess.DeleteValue(o.aliasKey)
		sess.DeleteValue(o.stateKey)
	}

	if !hasAlias || !hasState || state == "" {
		return "", "", false, nil
	}
	return alias, state, true, nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
