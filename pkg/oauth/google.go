package oauth

import (
	"context"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

const (
	// GoogleProviderName is the identifier for Google OAuth provider.
	GoogleProviderName = "google"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleDefaultScopes returns the default scopes for Google OAuth.
func GoogleDefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}
}

// GoogleProvider implements Provider for Google OAuth.
type GoogleProvider struct {
	*client
}

// NewGoogleProvider creates a new Google OAuth provider.
// Returns an error if ClientID or ClientSecret is empty.
func NewGoogleProvider(cfg ProviderConfig, opts ...Option) (*GoogleProvider, error) {
	c, err := newClient(GoogleProviderName, cfg, googleOAuth.Endpoint, GoogleDefaultScopes(), opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleProvider{client: c}, nil
}

// FetchIdentity retrieves user information from Google.
// Unverified addresses are not carried into the identity.
func (p *GoogleProvider) FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	var user googleUserInfo
	raw, err := p.getJSON(ctx, token, googleUserInfoURL, &user)
	if err != nil {
		return nil, err
	}

	ident := newIdentity(GoogleProviderName, token, raw)
	ident.ProviderUserID = user.ID
	ident.Name = user.Name
	ident.Nickname = user.GivenName
	ident.Avatar = user.Picture
	if user.VerifiedEmail {
		ident.Email = user.Email
		ident.EmailVerified = true
	}

	return requireID(GoogleProviderName, ident)
}

// googleUserInfo represents the response from Google's userinfo endpoint.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Picture       string `json:"picture"`
	VerifiedEmail bool   `json:"verified_email"`
}
