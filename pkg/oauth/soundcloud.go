package oauth

import (
	"context"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	// SoundCloudProviderName is the identifier for SoundCloud OAuth provider.
	SoundCloudProviderName = "soundcloud"
	soundcloudMeURL        = "https://api.soundcloud.com/me"
)

// SoundCloudDefaultScopes returns the default scopes for SoundCloud OAuth.
func SoundCloudDefaultScopes() []string {
	return []string{"non-expiring"}
}

// SoundCloudProvider implements Provider for SoundCloud.
type SoundCloudProvider struct {
	*client
}

// NewSoundCloudProvider creates a new SoundCloud OAuth provider.
func NewSoundCloudProvider(cfg ProviderConfig, opts ...Option) (*SoundCloudProvider, error) {
	c, err := newClient(SoundCloudProviderName, cfg, endpoints.Soundcloud, SoundCloudDefaultScopes(), opts...)
	if err != nil {
		return nil, err
	}
	return &SoundCloudProvider{client: c}, nil
}

// FetchIdentity retrieves the SoundCloud account behind the token.
func (p *SoundCloudProvider) FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	var user soundcloudUser
	raw, err := p.getJSON(ctx, token, soundcloudMeURL, &user)
	if err != nil {
		return nil, err
	}

	ident := newIdentity(SoundCloudProviderName, token, raw)
	if user.ID != 0 {
		ident.ProviderUserID = strconv.FormatInt(user.ID, 10)
	}
	ident.Nickname = user.Username
	ident.Name = user.FullName
	ident.Avatar = user.AvatarURL

	return requireID(SoundCloudProviderName, ident)
}

type soundcloudUser struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	ID        int64  `json:"id"`
}
