package oauthflow_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauthlink/pkg/oauth"
	"github.com/dmitrymomot/oauthlink/pkg/oauthflow"
)

type mapSession map[string]string

func (s mapSession) GetValue(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

func (s mapSession) SetValue(key, val string) { s[key] = val }
func (s mapSession) DeleteValue(key string)   { delete(s, key) }

// sharedSession is a per-request copy of a session whose values live in a
// shared backing map.
type sharedSession struct {
	mapSession
	backing  map[string]string
	mu       *sync.Mutex
	claimErr error
}

func (s sharedSession) ClaimValues(_ context.Context, keys ...string) (map[string]string, error) {
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := s.backing[k]; ok {
			out[k] = v
			delete(s.backing, k)
		}
		delete(s.mapSession, k)
	}
	return out, nil
}

type fakeProvider struct {
	exchangeErr error
	identity    *oauth.Identity
	exchanges   atomic.Int32
	fetches     atomic.Int32
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	cfg := oauth2.Config{
		ClientID: "client",
		Endpoint: oauth2.Endpoint{AuthURL: "https://provider.example.com/authorize"},
	}
	return cfg.AuthCodeURL(state, opts...)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	p.exchanges.Add(1)
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "token-for-" + code}, nil
}

func (p *fakeProvider) FetchIdentity(_ context.Context, token *oauth2.Token) (*oauth.Identity, error) {
	p.fetches.Add(1)
	ident := *p.identity
	ident.AccessToken = token.AccessToken
	return &ident, nil
}

type fixedStates struct{ values []string }

func (f *fixedStates) GenerateState() (string, error) {
	v := f.values[0]
	f.values = f.values[1:]
	return v, nil
}

type brokenStates struct{}

func (brokenStates) GenerateState() (string, error) { return "", oauth.ErrEntropyUnavailable }

func setup(t *testing.T, opts ...oauthflow.Option) (*oauthflow.Orchestrator, *fakeProvider) {
	t.Helper()
	p := &fakeProvider{identity: &oauth.Identity{Provider: "fake", ProviderUserID: "42", Email: "a@x.com"}}
	reg := oauth.NewRegistry()
	reg.Register("github", p)
	return oauthflow.New(reg, nil, opts...), p
}

func stateFrom(t *testing.T, redirect string) string {
	t.Helper()
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestOrchestrator_RoundTrip(t *testing.T) {
	t.Parallel()

	flow, p := setup(t)
	sess := mapSession{}
	ctx := context.Background()

	redirect, err := flow.Initiate(ctx, sess, "github")
	require.NoError(t, err)
	require.Contains(t, redirect, "https://provider.example.com/authorize")
	state := stateFrom(t, redirect)
	require.NotEmpty(t, state)
	require.Equal(t, "github", sess[oauthflow.DefaultAliasKey])
	require.Equal(t, state, sess[oauthflow.DefaultStateKey])

	ident, err := flow.Complete(ctx, sess, "github", state, "code123")
	require.NoError(t, err)
	require.Equal(t, "github", ident.Provider)
	require.Equal(t, "42", ident.ProviderUserID)
	require.Equal(t, "token-for-code123", ident.AccessToken)
	require.Equal(t, int32(1), p.exchanges.Load())
	require.Empty(t, sess)
}

func TestOrchestrator_SingleUse(t *testing.T) {
	t.Parallel()

	flow, p := setup(t)
	sess := mapSession{}
	ctx := context.Background()

	redirect, err := flow.Initiate(ctx, sess, "github")
	require.NoError(t, err)
	state := stateFrom(t, redirect)

	_, err = flow.Complete(ctx, sess, "github", state, "code")
	require.NoError(t, err)

	_, err = flow.Complete(ctx, sess, "github", state, "code")
	require.ErrorIs(t, err, oauthflow.ErrStateMismatch)
	require.ErrorIs(t, err, oauthflow.ErrStateMissing)
	require.Equal(t, int32(1), p.exchanges.Load())
}

func TestOrchestrator_AnyMutationFails(t *testing.T) {
	t.Parallel()

	flow, p := setup(t)
	ctx := context.Background()

	probe := mapSession{}
	redirect, err := flow.Initiate(ctx, probe, "github")
	require.NoError(t, err)
	length := len(stateFrom(t, redirect))

	for i := range length {
		sess := mapSession{}
		redirect, err := flow.Initiate(ctx, sess, "github")
		require.NoError(t, err)
		state := []byte(stateFrom(t, redirect))
		if state[i] == 'A' {
			state[i] = 'B'
		} else {
			state[i] = 'A'
		}

		_, err = flow.Complete(ctx, sess, "github", string(state), "code")
		require.ErrorIs(t, err, oauthflow.ErrStateMismatch, "position %d", i)
		require.Empty(t, sess, "state must be consumed on failure")
	}
	require.Zero(t, p.exchanges.Load())
	require.Zero(t, p.fetches.Load())
}

func TestOrchestrator_WrongStateNeverCallsProvider(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{identity: &oauth.Identity{ProviderUserID: "42"}}
	reg := oauth.NewRegistry()
	reg.Register("github", p)
	flow := oauthflow.New(reg, &fixedStates{values: []string{"abc"}})

	sess := mapSession{}
	_, err := flow.Initiate(context.Background(), sess, "github")
	require.NoError(t, err)

	_, err = flow.Complete(context.Background(), sess, "github", "wrong-state", "code123")
	require.ErrorIs(t, err, oauthflow.ErrStateMismatch)
	require.NotErrorIs(t, err, oauthflow.ErrStateMissing)
	require.Zero(t, p.exchanges.Load())
	require.Zero(t, p.fetches.Load())
}

func TestOrchestrator_AliasMismatch(t *testing.T) {
	t.Parallel()

	flow, p := setup(t)
	sess := mapSession{}
	ctx := context.Background()

	redirect, err := flow.Initiate(ctx, sess, "github")
	require.NoError(t, err)

	_, err = flow.Complete(ctx, sess, "google", stateFrom(t, redirect), "code")
	require.ErrorIs(t, err, oauthflow.ErrStateMismatch)
	require.Zero(t, p.exchanges.Load())
}

func TestOrchestrator_MissingState(t *testing.T) {
	t.Parallel()

	flow, p := setup(t)

	cases := []struct {
		sess mapSession
		name string
	}{
		{name: "empty session", sess: mapSession{}},
		{name: "alias only", sess: mapSession{oauthflow.DefaultAliasKey: "github"}},
		{name: "empty state", sess: mapSession{oauthflow.DefaultAliasKey: "github", oauthflow.DefaultStateKey: ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := flow.Complete(context.Background(), tc.sess, "github", "", "code")
			require.ErrorIs(t, err, oauthflow.ErrStateMismatch)
			require.ErrorIs(t, err, oauthflow.ErrStateMissing)
			require.Empty(t, tc.sess)
		})
	}
	require.Zero(t, p.exchanges.Load())
}

func TestOrchestrator_UnknownAlias(t *testing.T) {
	t.Parallel()

	flow, _ := setup(t)
	sess := mapSession{}

	redirect, err := flow.Initiate(context.Background(), sess, "bitbucket")
	require.ErrorIs(t, err, oauth.ErrProviderNotRegistered)
	require.Empty(t, redirect)
	require.Empty(t, sess)
}

func TestOrchestrator_EntropyFailure(t *testing.T) {
	t.Parallel()

	reg := oauth.NewRegistry()
	reg.Register("github", &fakeProvider{})
	flow := oauthflow.New(reg, brokenStates{})
	sess := mapSession{}

	_, err := flow.Initiate(context.Background(), sess, "github")
	require.ErrorIs(t, err, oauth.ErrEntropyUnavailable)
	require.Empty(t, sess)
}

func TestOrchestrator_ExchangeFailure(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{exchangeErr: errors.Join(oauth.ErrTokenExchangeFailed, errors.New("bad code"))}
	reg := oauth.NewRegistry()
	reg.Register("github", p)
	flow := oauthflow.New(reg, nil)
	sess := mapSession{}

	redirect, err := flow.Initiate(context.Background(), sess, "github")
	require.NoError(t, err)

	_, err = flow.Complete(context.Background(), sess, "github", stateFrom(t, redirect), "code")
	require.ErrorIs(t, err, oauth.ErrTokenExchangeFailed)
	require.Zero(t, p.fetches.Load())
	require.Empty(t, sess)
}

func TestOrchestrator_Options(t *testing.T) {
	t.Parallel()

	flow, _ := setup(t,
		oauthflow.WithAuthCodeOptions(oauth2.AccessTypeOffline),
		oauthflow.WithSessionKeys("a", "s"),
		oauthflow.WithLogger(nil),
	)
	sess := mapSession{}

	redirect, err := flow.Initiate(context.Background(), sess, "github")
	require.NoError(t, err)
	require.Contains(t, redirect, "access_type=offline")
	require.Equal(t, "github", sess["a"])
	require.Equal(t, stateFrom(t, redirect), sess["s"])
}

func TestOrchestrator_ClaimerRejectsConcurrentCopies(t *testing.T) {
	t.Parallel()

	flow, p := setup(t)
	ctx := context.Background()

	stored := mapSession{}
	redirect, err := flow.Initiate(ctx, stored, "github")
	require.NoError(t, err)
	state := stateFrom(t, redirect)

	var mu sync.Mutex
	copyOf := func() sharedSession {
		local := mapSession{}
		for k, v := range stored {
			local[k] = v
		}
		return sharedSession{mapSession: local, backing: stored, mu: &mu}
	}

	const callbacks = 8
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for range callbacks {
		sess := copyOf()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := flow.Complete(ctx, sess, "github", state, "code")
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, oauthflow.ErrStateMissing):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), succeeded.Load())
	require.Equal(t, int32(callbacks-1), rejected.Load())
	require.Equal(t, int32(1), p.exchanges.Load())
	require.Empty(t, stored)
}

func TestOrchestrator_ClaimError(t *testing.T) {
	t.Parallel()

	flow, p := setup(t)
	ctx := context.Background()
	storeDown := errors.New("store down")

	sess := sharedSession{
		mapSession: mapSession{oauthflow.DefaultAliasKey: "github", oauthflow.DefaultStateKey: "abc"},
		backing:    map[string]string{},
		mu:         &sync.Mutex{},
		claimErr:   storeDown,
	}
	_, err := flow.Complete(ctx, sess, "github", "abc", "code")
	require.ErrorIs(t, err, storeDown)
	require.NotErrorIs(t, err, oauthflow.ErrStateMismatch)
	require.Zero(t, p.exchanges.Load())
}

func TestOrchestrator_Abandon(t *testing.T) {
	t.Parallel()

	flow, p := setup(t)
	sess := mapSession{}
	ctx := context.Background()

	redirect, err := flow.Initiate(ctx, sess, "github")
	require.NoError(t, err)
	state := stateFrom(t, redirect)

	require.NoError(t, flow.Abandon(ctx, sess))
	require.Empty(t, sess)

	_, err = flow.Complete(ctx, sess, "github", state, "code")
	require.ErrorIs(t, err, oauthflow.ErrStateMissing)
	require.Zero(t, p.exchanges.Load())

	require.NoError(t, flow.Abandon(ctx, mapSession{}), "nothing pending is fine")
}
