package identity

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type providerKey struct {
	provider       string
	providerUserID string
}

// MemoryStore keeps links in process memory. Create checks and inserts under
// one lock, giving the same uniqueness guarantee as the database constraint.
type MemoryStore struct {
	byID       map[string]*Link
	byProvider map[providerKey]string
	now        func() time.Time
	mu         sync.RWMutex
}

// NewMemoryStore creates an empty in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*Link),
		byProvider: make(map[providerKey]string),
		now:        time.Now,
	}
}

func (s *MemoryStore) FindByProviderIdentity(_ context.Context, provider, providerUserID string) (*Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byProvider[providerKey{provider, providerUserID}]
	if !ok {
		return nil, ErrNotFound
	}
	l := *s.byID[id]
	return &l, nil
}

func (s *MemoryStore) Create(_ context.Context, userID, provider, providerUserID, accessToken string) (*Link, error) {
	if err := validate(userID, provider, providerUserID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := providerKey{provider, providerUserID}
	if _, exists := s.byProvider[key]; exists {
		return nil, ErrDuplicateLink
	}

	now := s.now().UTC()
	l := &Link{
		ID:             uuid.NewString(),
		UserID:         userID,
		Provider:       provider,
		ProviderUserID: providerUserID,
		AccessToken:    accessToken,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.byID[l.ID] = l
	s.byProvider[key] = l.ID

	out := *l
	return &out, nil
}

func (s *MemoryStore) UpdateToken(_ context.Context, linkID, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.byID[linkID]
	if !ok {
		return ErrNotFound
	}
	l.AccessToken = accessToken
	l.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var links []Link
	for _, l := range s.byID {
		if l.UserID == userID {
			links = append(links, *l)
		}
	}
	slices.SortFunc(links, func(a, b Link) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.Provider, b.Provider))
	})
	return links, nil
}

func (s *MemoryStore) Delete(_ context.Context, linkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.byID[linkID]
	if !ok {
		return ErrNotFound
	}
	delete(s.byProvider, providerKey{l.Provider, l.ProviderUserID})
	delete(s.byID, linkID)
	return nil
}

// Len reports how many links are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
