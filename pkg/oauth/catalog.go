package oauth

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Factory constructs a provider for alias from its configuration.
type Factory func(alias string, cfg ProviderConfig, opts ...Option) (Provider, error)

// Catalog resolves provider kinds and provider_class references to factories.
type Catalog struct {
	factories map[string]Factory
}

// NewCatalog returns a catalog pre-loaded with the built-in providers and
// the generic endpoint-driven provider.
func NewCatalog() *Catalog {
	c := &Catalog{factories: make(map[string]Factory)}
	c.Register(FacebookProviderName, func(_ string, cfg ProviderConfig, opts ...Option) (Provider, error) {
		return NewFacebookProvider(cfg, opts...)
	})
	c.Register(GitHubProviderName, func(_ string, cfg ProviderConfig, opts ...Option) (Provider, error) {
		return NewGitHubProvider(cfg, opts...)
	})
	c.Register(GoogleProviderName, func(_ string, cfg ProviderConfig, opts ...Option) (Provider, error) {
		return NewGoogleProvider(cfg, opts...)
	})
	c.Register(LinkedInProviderName, func(_ string, cfg ProviderConfig, opts ...Option) (Provider, error) {
		return NewLinkedInProvider(cfg, opts...)
	})
	c.Register(InstagramProviderName, func(_ string, cfg ProviderConfig, opts ...Option) (Provider, error) {
		return NewInstagramProvider(cfg, opts...)
	})
	c.Register(SoundCloudProviderName, func(_ string, cfg ProviderConfig, opts ...Option) (Provider, error) {
		return NewSoundCloudProvider(cfg, opts...)
	})
	c.Register(GenericProviderClass, func(alias string, cfg ProviderConfig, opts ...Option) (Provider, error) {
		return NewGenericProvider(alias, cfg, opts...)
	})
	return c
}

// Register adds or replaces the factory for kind.
func (c *Catalog) Register(kind string, f Factory) {
	c.factories[kind] = f
}

// Lookup returns the factory registered for kind.
func (c *Catalog) Lookup(kind string) (Factory, bool) {
	f, ok := c.factories[kind]
	return f, ok
}

// isBuiltin reports whether alias names one of the bundled providers.
func isBuiltin(alias string) bool {
	switch alias {
	case FacebookProviderName, GitHubProviderName, GoogleProviderName,
		LinkedInProviderName, InstagramProviderName, SoundCloudProviderName:
		return true
	}
	return false
}

// BuildRegistry constructs every provider in cfg and registers it under its alias.
//
// Entries under Providers must use a built-in alias. Entries under
// CustomProviders must set provider_class to a kind known to the catalog and
// may not reuse an alias already configured under Providers. Every violation
// is reported as ErrProviderMisconfigured so it surfaces at startup.
func BuildRegistry(cfg Config, catalog *Catalog, log *slog.Logger, opts ...Option) (*Registry, error) {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	opts = append([]Option{WithLogger(log)}, opts...)

	reg := NewRegistry()
	var errs []error

	for _, alias := range slices.Sorted(maps.Keys(cfg.Providers)) {
		if !isBuiltin(alias) {
			errs = append(errs, misconfigured(alias, "not a built-in provider; declare it under custom_providers with a provider_class"))
			continue
		}
		factory, _ := catalog.Lookup(alias)
		p, err := factory(alias, cfg.Providers[alias], opts...)
		if err != nil {
			errs = append(errs, misconfigured(alias, err.Error()))
			continue
		}
		reg.Register(alias, p)
	}

	for _, alias := range slices.Sorted(maps.Keys(cfg.CustomProviders)) {
		pc := cfg.CustomProviders[alias]
		if _, taken := cfg.Providers[alias]; taken {
			errs = append(errs, misconfigured(alias, "custom provider shadows a configured built-in provider"))
			continue
		}
		if pc.ProviderClass == "" {
			errs = append(errs, misconfigured(alias, "custom provider does not declare a provider_class"))
			continue
		}
		factory, ok := catalog.Lookup(pc.ProviderClass)
		if !ok {
			errs = append(errs, misconfigured(alias, fmt.Sprintf("could not resolve provider_class %q", pc.ProviderClass)))
			continue
		}
		p, err := factory(alias, pc, opts...)
		if err != nil {
			errs = append(errs, misconfigured(alias, err.Error()))
			continue
		}
		reg.Register(alias, p)
		log.Debug("registered custom oauth provider",
			slog.String("alias", alias),
			slog.String("provider_class", pc.ProviderClass),
		)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return reg, nil
}

func misconfigured(alias, reason string) error {
	return errors.Join(ErrProviderMisconfigured, fmt.Errorf("provider %q: %s", alias, reason))
}
