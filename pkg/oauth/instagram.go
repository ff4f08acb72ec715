package oauth

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	// InstagramProviderName is the identifier for Instagram OAuth provider.
	InstagramProviderName = "instagram"
	instagramMeURL        = "https://graph.instagram.com/me"
)

// InstagramDefaultScopes returns the default scopes for Instagram OAuth.
func InstagramDefaultScopes() []string {
	return []string{"user_profile"}
}

// InstagramProvider implements Provider for Instagram.
// Instagram never discloses an email address.
type InstagramProvider struct {
	*client
}

// NewInstagramProvider creates a new Instagram OAuth provider.
func NewInstagramProvider(cfg ProviderConfig, opts ...Option) (*InstagramProvider, error) {
	c, err := newClient(InstagramProviderName, cfg, endpoints.Instagram, InstagramDefaultScopes(), opts...)
	if err != nil {
		return nil, err
	}
	return &InstagramProvider{client: c}, nil
}

// FetchIdentity retrieves the Instagram account behind the token. The token
// travels in the Authorization header, never in the URL.
func (p *InstagramProvider) FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	var user instagramUser
	raw, err := p.getJSON(ctx, token, instagramMeURL+"?fields=id,username", &user)
	if err != nil {
		return nil, err
	}

	ident := newIdentity(InstagramProviderName, token, raw)
	ident.ProviderUserID = user.ID
	ident.Nickname = user.Username

	return requireID(InstagramProviderName, ident)
}

type instagramUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
