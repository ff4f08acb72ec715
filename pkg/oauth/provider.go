package oauth

import (
	"context"
	"maps"
	"time"

	"golang.org/x/oauth2"
)

// Identity is the provider-agnostic account record produced by a completed
// OAuth flow. It is handed around by value; Raw is owned by the Identity
// that carries it and must not be mutated by callers.
type Identity struct {
	Expiry time.Time
	Raw    map[string]any // Provider payload as decoded from the profile endpoint

	Provider       string // Alias the identity was obtained through
	ProviderUserID string // Opaque, provider-scoped user identifier (mandatory)
	Nickname       string
	Name           string
	Email          string // Empty unless the provider asserts ownership
	Avatar         string
	AccessToken    string
	RefreshToken   string

	EmailVerified bool
}

// WithProvider returns a copy of the identity bound to the given alias.
func (i Identity) WithProvider(alias string) Identity {
	i.Provider = alias
	i.Raw = maps.Clone(i.Raw)
	return i
}

// Provider abstracts provider-specific OAuth operations.
// Each provider (Google, GitHub, etc.) implements this interface and handles
// its own wire dialect; callers only ever see normalized identities.
type Provider interface {
	// Name returns the provider kind (e.g., "google", "github").
	Name() string

	// AuthCodeURL generates the authorization URL for the OAuth flow.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for tokens.
	// Failures are reported as ErrTokenExchangeFailed.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchIdentity retrieves the account behind the access token.
	// Failures and a missing provider user id are reported as ErrProfileFetchFailed.
	FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error)
}

func newIdentity(kind string, token *oauth2.Token, raw map[string]any) *Identity {
	ident := &Identity{
		Provider:    kind,
		AccessToken: token.AccessToken,
		Expiry:      token.Expiry,
		Raw:         raw,
	}
	ident.RefreshToken = token.RefreshToken
	return ident
}
