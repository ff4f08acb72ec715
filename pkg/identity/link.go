package identity

import (
	"context"
	"errors"
	"time"
)

// Link associates a local user with one provider account.
// (Provider, ProviderUserID) is unique across all links.
type Link struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	AccessToken    string
}

// Store persists links. MemoryStore and PostgresStore implement it.
type Store interface {
	// FindByProviderIdentity returns ErrNotFound when the identity is unlinked.
	FindByProviderIdentity(ctx context.Context, provider, providerUserID string) (*Link, error)
	// Create returns ErrDuplicateLink when the identity is already linked.
	Create(ctx context.Context, userID, provider, providerUserID, accessToken string) (*Link, error)
	UpdateToken(ctx context.Context, linkID, accessToken string) error
	ListByUser(ctx context.Context, userID string) ([]Link, error)
	Delete(ctx context.Context, linkID string) error
}

func validate(userID, provider, providerUserID string) error {
	switch {
	case userID == "":
		return errors.Join(ErrInvalidLink, errors.New("empty user id"))
	case provider == "":
		return errors.Join(ErrInvalidLink, errors.New("empty provider"))
	case providerUserID == "":
		return errors.Join(ErrInvalidLink, errors.New("empty provider user id"))
	}
	return nil
}
