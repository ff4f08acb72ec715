package oauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthlink/pkg/oauth"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	gh, err := oauth.NewGitHubProvider(testProviderConfig)
	require.NoError(t, err)
	gg, err := oauth.NewGoogleProvider(testProviderConfig)
	require.NoError(t, err)

	reg := oauth.NewRegistry()
	reg.Register("google", gg)
	reg.Register("github", gh)

	t.Run("get registered", func(t *testing.T) {
		t.Parallel()
		p, err := reg.Get("github")
		require.NoError(t, err)
		require.Equal(t, "github", p.Name())
	})

	t.Run("unknown alias", func(t *testing.T) {
		t.Parallel()
		p, err := reg.Get("myspace")
		require.ErrorIs(t, err, oauth.ErrProviderNotRegistered)
		require.Contains(t, err.Error(), "myspace")
		require.Nil(t, p)
	})

	t.Run("aliases sorted", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, []string{"github", "google"}, reg.Aliases())
	})
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	t.Parallel()

	first, err := oauth.NewGenericProvider("first", genericConfig(oauth.FieldMap{}))
	require.NoError(t, err)
	second, err := oauth.NewGenericProvider("second", genericConfig(oauth.FieldMap{}))
	require.NoError(t, err)

	reg := oauth.NewRegistry()
	reg.Register("acme", first)
	reg.Register("acme", second)

	p, err := reg.Get("acme")
	require.NoError(t, err)
	require.Equal(t, "second", p.Name())
}
