package oauth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthlink/pkg/oauth"
)

const sampleConfig = `
table: social_links
providers:
  github:
    client_id: gh-id
    client_secret: ${OAUTHLINK_TEST_GH_SECRET}
    redirect_uri: https://example.com/auth/github/callback
    scope:
      - read:user
      - user:email
custom_providers:
  acme:
    provider_class: generic
    client_id: acme-id
    client_secret: acme-secret
    auth_url: https://id.example.com/authorize
    token_url: https://id.example.com/token
    userinfo_url: https://id.example.com/userinfo
    fields:
      id: sub
      email_verified: email_verified
`

func TestParseConfig(t *testing.T) {
	t.Setenv("OAUTHLINK_TEST_GH_SECRET", "s3cret")

	cfg, err := oauth.ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)
	require.Equal(t, "social_links", cfg.Table)

	gh := cfg.Providers["github"]
	require.Equal(t, "gh-id", gh.ClientID)
	require.Equal(t, "s3cret", gh.ClientSecret)
	require.Equal(t, "https://example.com/auth/github/callback", gh.RedirectURL)
	require.Equal(t, []string{"read:user", "user:email"}, gh.Scopes)

	acme := cfg.CustomProviders["acme"]
	require.Equal(t, oauth.GenericProviderClass, acme.ProviderClass)
	require.Equal(t, "sub", acme.Fields.ID)
	require.Equal(t, "https://id.example.com/userinfo", acme.UserInfoURL)

	reg, err := oauth.BuildRegistry(cfg, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"acme", "github"}, reg.Aliases())
}

func TestParseConfig_LiteralDollar(t *testing.T) {
	t.Setenv("OAUTHLINK_TEST_PART", "expanded")

	cfg, err := oauth.ParseConfig([]byte(`
providers:
  github:
    client_id: ${OAUTHLINK_TEST_PART}
    client_secret: "pa$$w0rd$OAUTHLINK_TEST_PART"
    redirect_uri: https://example.com/cb?x=${OAUTHLINK_TEST_UNSET_VAR}
`))
	require.NoError(t, err)

	gh := cfg.Providers["github"]
	require.Equal(t, "expanded", gh.ClientID)
	require.Equal(t, "pa$$w0rd$OAUTHLINK_TEST_PART", gh.ClientSecret)
	require.Equal(t, "https://example.com/cb?x=", gh.RedirectURL)
}

func TestConfig_WithDefaultRedirects(t *testing.T) {
	t.Parallel()

	cfg := oauth.Config{
		Providers: map[string]oauth.ProviderConfig{
			"github": {ClientID: "gh"},
			"google": {ClientID: "g", RedirectURL: "https://other.example.com/cb"},
		},
		CustomProviders: map[string]oauth.ProviderConfig{
			"gitea": {ProviderClass: oauth.GenericProviderClass},
		},
	}

	out := cfg.WithDefaultRedirects("https://app.example.com/")
	require.Equal(t, "https://app.example.com/auth/github/callback", out.Providers["github"].RedirectURL)
	require.Equal(t, "https://other.example.com/cb", out.Providers["google"].RedirectURL)
	require.Equal(t, "https://app.example.com/auth/gitea/callback", out.CustomProviders["gitea"].RedirectURL)
	require.Empty(t, cfg.Providers["github"].RedirectURL, "input is not modified")

	same := cfg.WithDefaultRedirects("")
	require.Empty(t, same.Providers["github"].RedirectURL)
}

func TestParseConfig_DefaultTable(t *testing.T) {
	t.Parallel()

	cfg, err := oauth.ParseConfig([]byte("providers: {}\n"))
	require.NoError(t, err)
	require.Equal(t, oauth.DefaultTable, cfg.Table)
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := oauth.ParseConfig([]byte("providers: [oops"))
	require.ErrorIs(t, err, oauth.ErrInvalidConfig)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "oauth.yaml")
		require.NoError(t, os.WriteFile(path, []byte("table: links\n"), 0o600))

		cfg, err := oauth.LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "links", cfg.Table)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := oauth.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, oauth.ErrInvalidConfig)
	})
}
