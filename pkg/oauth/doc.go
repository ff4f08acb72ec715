// Package oauth provides OAuth2 authorization code flow implementations for
// the providers an application can link accounts with.
//
// This package includes a Provider interface, concrete implementations for
// Facebook, GitHub, Google, LinkedIn, Instagram and SoundCloud, and a
// GenericProvider driven entirely by configuration. Each provider builds
// authorization URLs, exchanges codes for tokens, and normalizes the
// provider's profile into an Identity.
//
// # Features
//
//   - Provider interface for pluggable OAuth2 implementations
//   - Identity as the single provider-agnostic account record
//   - Registry keyed by alias, built once at startup
//   - Catalog of factories so custom implementations are resolved by
//     provider_class at startup, never per request
//   - RandomStateGenerator for anti-forgery state tokens
//   - YAML configuration with environment expansion
//   - Sentinel errors with "oauth:" prefix for consistent error handling
//
// # Usage
//
// Building a registry from configuration:
//
//	cfg, err := oauth.LoadConfig("config/oauth.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	catalog := oauth.NewCatalog()
//	catalog.Register("acme", func(alias string, pc oauth.ProviderConfig, opts ...oauth.Option) (oauth.Provider, error) {
//		return acme.NewProvider(pc)
//	})
//
//	registry, err := oauth.BuildRegistry(cfg, catalog, logger)
//	if err != nil {
//		log.Fatal(err) // wraps oauth.ErrProviderMisconfigured
//	}
//
// Driving a provider directly:
//
//	provider, err := registry.Get("github")
//	url := provider.AuthCodeURL(state)
//
//	token, err := provider.Exchange(ctx, code)
//	identity, err := provider.FetchIdentity(ctx, token)
//
// Most applications never do this by hand; the oauthflow package verifies
// the state parameter around these calls.
//
// # Email Handling
//
// Providers only populate Identity.Email with addresses the provider asserts
// are verified. Unverified addresses are dropped rather than rejected, so an
// account without one can still sign in but is never linked to an existing
// user by email.
//
// # Error Handling
//
//   - ErrProviderNotRegistered: Registry lookup for an unknown alias
//   - ErrProviderMisconfigured: BuildRegistry could not construct a provider
//   - ErrTokenExchangeFailed: Code exchange failed or returned no token
//   - ErrProfileFetchFailed: Profile request failed or lacked a user id
//   - ErrEntropyUnavailable: Random source failed while generating state
//
// Profile failures are joined with ErrRequestFailed, ErrDecodeFailed or
// ErrNilResponse for detail; use errors.Is for checking.
package oauth
