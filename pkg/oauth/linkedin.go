package oauth

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	// LinkedInProviderName is the identifier for LinkedIn OAuth provider.
	LinkedInProviderName = "linkedin"
	linkedinUserInfoURL  = "https://api.linkedin.com/v2/userinfo"
)

// LinkedInDefaultScopes returns the default scopes for Sign In with LinkedIn.
func LinkedInDefaultScopes() []string {
	return []string{"openid", "profile", "email"}
}

// LinkedInProvider implements Provider for Sign In with LinkedIn (OpenID Connect).
type LinkedInProvider struct {
	*client
}

// NewLinkedInProvider creates a new LinkedIn OAuth provider.
func NewLinkedInProvider(cfg ProviderConfig, opts ...Option) (*LinkedInProvider, error) {
	c, err := newClient(LinkedInProviderName, cfg, endpoints.LinkedIn, LinkedInDefaultScopes(), opts...)
	if err != nil {
		return nil, err
	}
	return &LinkedInProvider{client: c}, nil
}

// FetchIdentity retrieves the OpenID userinfo document behind the token.
func (p *LinkedInProvider) FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	var user linkedinUserInfo
	raw, err := p.getJSON(ctx, token, linkedinUserInfoURL, &user)
	if err != nil {
		return nil, err
	}

	ident := newIdentity(LinkedInProviderName, token, raw)
	ident.ProviderUserID = user.Sub
	ident.Name = user.Name
	ident.Nickname = user.GivenName
	ident.Avatar = user.Picture
	if user.EmailVerified {
		ident.Email = user.Email
		ident.EmailVerified = true
	}

	return requireID(LinkedInProviderName, ident)
}

type linkedinUserInfo struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Email         string `json:"email"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
}
