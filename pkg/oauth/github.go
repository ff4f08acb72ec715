package oauth

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/oauth2"
	githubOAuth "golang.org/x/oauth2/github"
)

const (
	// GitHubProviderName is the identifier for GitHub OAuth provider.
	GitHubProviderName = "github"
	githubUserURL      = "https://api.github.com/user"
	githubEmailsURL    = "https://api.github.com/user/emails"
)

// GitHubDefaultScopes returns the default scopes for GitHub OAuth.
func GitHubDefaultScopes() []string {
	return []string{"read:user", "user:email"}
}

// GitHubProvider implements Provider for GitHub OAuth.
type GitHubProvider struct {
	*client
}

// NewGitHubProvider creates a new GitHub OAuth provider.
// Returns an error if ClientID or ClientSecret is empty.
func NewGitHubProvider(cfg ProviderConfig, opts ...Option) (*GitHubProvider, error) {
	c, err := newClient(GitHubProviderName, cfg, githubOAuth.Endpoint, GitHubDefaultScopes(), opts...)
	if err != nil {
		return nil, err
	}
	return &GitHubProvider{client: c}, nil
}

// FetchIdentity retrieves the GitHub account behind the token.
// The email is the primary verified address, falling back to any verified
// address. It is left empty when GitHub reports none or the emails endpoint
// is unavailable to the token.
func (p *GitHubProvider) FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	var user githubUser
	raw, err := p.getJSON(ctx, token, githubUserURL, &user)
	if err != nil {
		return nil, err
	}

	var emails []githubEmail
	if _, err := p.getJSON(ctx, token, githubEmailsURL, &emails); err != nil {
		p.log.WarnContext(ctx, "github emails unavailable, continuing without email",
			slog.String("error", err.Error()))
		emails = nil
	}

	ident := newIdentity(GitHubProviderName, token, raw)
	if user.ID != 0 {
		ident.ProviderUserID = strconv.FormatInt(user.ID, 10)
	}
	ident.Nickname = user.Login
	ident.Name = user.Name
	ident.Avatar = user.AvatarURL
	ident.Email = primaryVerifiedEmail(emails)
	ident.EmailVerified = ident.Email != ""

	return requireID(GitHubProviderName, ident)
}

func primaryVerifiedEmail(emails []githubEmail) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}

	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}

	return ""
}

type githubUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	ID        int64  `json:"id"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}
