package session

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("session: not found")
	ErrExpired  = errors.New("session: expired")
	// ErrInvalidToken means no cookie token could be generated.
	ErrInvalidToken = errors.New("session: token generation failed")
	ErrEncode       = errors.New("session: cannot encode for storage")
)

// Store persists sessions keyed by id and looked up by cookie token.
type Store interface {
	Create(ctx context.Context, s *Session) error
	// Get resolves a cookie token. Unknown tokens give ErrNotFound and
	// sessions past ExpiresAt give ErrExpired.
	Get(ctx context.Context, token string) (*Session, error)
	// Update replaces the stored copy of s. A changed Token retires the old one.
	Update(ctx context.Context, s *Session) error
	// Take removes keys from the stored session id and returns the values
	// that were still there. Concurrent calls never return the same value twice.
	Take(ctx context.Context, id string, keys ...string) (map[string]string, error)
	// Delete is a no-op for an unknown id.
	Delete(ctx context.Context, id string) error
	// DeleteByUserID logs a user out everywhere.
	DeleteByUserID(ctx context.Context, userID string) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
