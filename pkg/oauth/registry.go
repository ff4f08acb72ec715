package oauth

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Registry maps provider aliases to configured providers.
// It is built once at startup and passed to whoever needs lookups.
type Registry struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register stores p under alias. Registering an alias twice silently
// replaces the earlier provider; use BuildRegistry to get duplicate checks.
func (r *Registry) Register(alias string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[alias] = p
}

// Get returns the provider registered under alias.
// Returns ErrProviderNotRegistered for unknown aliases.
func (r *Registry) Get(alias string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[alias]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Join(ErrProviderNotRegistered, fmt.Errorf("alias %q", alias))
	}
	return p, nil
}

// Aliases returns the registered aliases in sorted order.
func (r *Registry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	aliases := make([]string, 0, len(r.providers))
	for alias := range r.providers {
		aliases = append(aliases, alias)
	}
	slices.Sort(aliases)
	return aliases
}
