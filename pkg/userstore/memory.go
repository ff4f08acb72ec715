package userstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/oauthlink/pkg/oauth"
)

// MemoryStore keeps users in process memory.
type MemoryStore struct {
	users map[string]User
	order []string
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

// Put inserts or replaces u as is. Useful for seeding existing accounts.
func (s *MemoryStore) Put(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.ID]; !exists {
		s.order = append(s.order, u.ID)
	}
	s.users[u.ID] = u
}

// CreateFromIdentity creates a user populated from ident and returns its id.
func (s *MemoryStore) CreateFromIdentity(_ context.Context, ident *oauth.Identity) (string, error) {
	if ident == nil {
		return "", ErrNilIdentity
	}
	u := fromIdentity(uuid.NewString(), ident, time.Now())
	s.Put(u)
	return u.ID, nil
}

// FindByEmail returns the earliest user with a matching email.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (string, error) {
	want := foldEmail(email)
	if want == "" {
		return "", ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if foldEmail(s.users[id].Email) == want {
			return id, nil
		}
	}
	return "", ErrNotFound
}

func (s *MemoryStore) Get(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports how many users are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
