package oauthlink

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/oauthlink/pkg/identity"
	"github.com/dmitrymomot/oauthlink/pkg/logger"
	"github.com/dmitrymomot/oauthlink/pkg/oauth"
	"github.com/dmitrymomot/oauthlink/pkg/userstore"
)

// IdentityStore persists provider links. Create must fail with
// identity.ErrDuplicateLink when the provider identity is already linked.
type IdentityStore interface {
	FindByProviderIdentity(ctx context.Context, provider, providerUserID string) (*identity.Link, error)
	Create(ctx context.Context, userID, provider, providerUserID, accessToken string) (*identity.Link, error)
	UpdateToken(ctx context.Context, linkID, accessToken string) error
}

// UserStore creates local users from provider identities.
type UserStore interface {
	CreateFromIdentity(ctx context.Context, ident *oauth.Identity) (string, error)
}

// EmailFinder is an optional UserStore capability enabling email matching.
// FindByEmail returns userstore.ErrNotFound when no user matches.
type EmailFinder interface {
	FindByEmail(ctx context.Context, email string) (string, error)
}

// UserDeleter is an optional UserStore capability used to remove a user
// created by the losing side of a concurrent first login.
type UserDeleter interface {
	Delete(ctx context.Context, userID string) error
}

// Branch identifies which reconciliation rule resolved an identity.
type Branch int

const (
	BranchExistingLink Branch = iota + 1
	BranchCurrentUser
	BranchEmailMatch
	BranchNewUser
)

func (b Branch) String() string {
	switch b {
	case BranchExistingLink:
		return "existing_link"
	case BranchCurrentUser:
		return "current_user"
	case BranchEmailMatch:
		return "email_match"
	case BranchNewUser:
		return "new_user"
	default:
		return "unknown"
	}
}

// Authenticator resolves provider identities to local user ids.
// It keeps no per-call state and is safe for concurrent use.
type Authenticator struct {
	links   IdentityStore
	users   UserStore
	emails  EmailFinder
	deleter UserDeleter
	log     *slog.Logger
}

// NewAuthenticator creates an authenticator. EmailFinder and UserDeleter are
// detected on users. A nil log disables logging.
func NewAuthenticator(links IdentityStore, users UserStore, log *slog.Logger) *Authenticator {
	if log == nil {
		log = logger.NewNope()
	}
	a := &Authenticator{links: links, users: users, log: log}
	if f, ok := users.(EmailFinder); ok {
		a.emails = f
	}
	if d, ok := users.(UserDeleter); ok {
		a.deleter = d
	}
	return a
}

// Authenticate resolves ident to a local user id. currentUserID is the user
// signed in to the host session, or empty.
//
// A duplicate link raised by a concurrent callback is not returned: the
// lookup is retried once and the winning link's user is used.
func (a *Authenticator) Authenticate(ctx context.Context, currentUserID string, ident *oauth.Identity) (string, Branch, error) {
	if ident == nil || ident.Provider == "" || ident.ProviderUserID == "" {
		return "", 0, ErrInvalidIdentity
	}

	userID, branch, err := a.resolve(ctx, currentUserID, ident)
	if err == nil {
		return userID, branch, nil
	}
	if !errors.Is(err, identity.ErrDuplicateLink) {
		return "", 0, errors.Join(ErrReconcileFailed, err)
	}

	a.log.DebugContext(ctx, "provider identity linked concurrently, retrying lookup",
		slog.String("provider_user_id", ident.ProviderUserID),
	)
	link, err := a.links.FindByProviderIdentity(ctx, ident.Provider, ident.ProviderUserID)
	if err != nil {
		return "", 0, errors.Join(ErrReconcileFailed, err)
	}
	return a.useLink(ctx, link, ident)
}

func (a *Authenticator) resolve(ctx context.Context, currentUserID string, ident *oauth.Identity) (string, Branch, error) {
	link, err := a.links.FindByProviderIdentity(ctx, ident.Provider, ident.ProviderUserID)
	switch {
	case err == nil:
		return a.useLink(ctx, link, ident)
	case !errors.Is(err, identity.ErrNotFound):
		return "", 0, err
	}

	if currentUserID != "" {
		if err := a.link(ctx, currentUserID, ident); err != nil {
			return "", 0, err
		}
		return currentUserID, BranchCurrentUser, nil
	}

	userID, err := a.findByEmail(ctx, ident.Email)
	if err != nil {
		return "", 0, err
	}
	if userID != "" {
		if err := a.link(ctx, userID, ident); err != nil {
			return "", 0, err
		}
		return userID, BranchEmailMatch, nil
	}

	userID, err = a.users.CreateFromIdentity(ctx, ident)
	if err != nil {
		return "", 0, err
	}
	if err := a.link(ctx, userID, ident); err != nil {
		if errors.Is(err, identity.ErrDuplicateLink) {
			a.discardUser(ctx, userID)
		}
		return "", 0, err
	}
	return userID, BranchNewUser, nil
}

func (a *Authenticator) useLink(ctx context.Context, link *identity.Link, ident *oauth.Identity) (string, Branch, error) {
	if link.AccessToken != ident.AccessToken {
		if err := a.links.UpdateToken(ctx, link.ID, ident.AccessToken); err != nil {
			return "", 0, errors.Join(ErrReconcileFailed, err)
		}
	}
	return link.UserID, BranchExistingLink, nil
}

func (a *Authenticator) link(ctx context.Context, userID string, ident *oauth.Identity) error {
	_, err := a.links.Create(ctx, userID, ident.Provider, ident.ProviderUserID, ident.AccessToken)
	return err
}

// findByEmail returns an empty id when email matching is unavailable or finds nothing.
func (a *Authenticator) findByEmail(ctx context.Context, email string) (string, error) {
	if a.emails == nil || email == "" {
		return "", nil
	}
	userID, err := a.emails.FindByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		return "", nil
	}
	return userID, err
}

func (a *Authenticator) discardUser(ctx context.Context, userID string) {
	if a.deleter == nil {
		a.log.WarnContext(ctx, "orphan user left after concurrent first login", slog.String("user_id", userID))
		return
	}
	if err := a.deleter.Delete(ctx, userID); err != nil {
		a.log.ErrorContext(ctx, "delete orphan user",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
