// Package config assembles the process configuration from the environment
// and the provider YAML file.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/oauthlink/internal/server"
	"github.com/dmitrymomot/oauthlink/pkg/db"
	"github.com/dmitrymomot/oauthlink/pkg/logger"
	"github.com/dmitrymomot/oauthlink/pkg/oauth"
	"github.com/dmitrymomot/oauthlink/pkg/redis"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

var (
	// ErrParse is returned when environment variables cannot be decoded.
	ErrParse = errors.New("config: failed to parse environment")

	// ErrInvalid is returned when decoded values are inconsistent.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config is the full process configuration.
type Config struct {
	Server server.Config
	DB     db.Config
	Redis  redis.Config
	Log    logger.Config

	OAuthConfigPath string `env:"OAUTH_CONFIG" envDefault:"config/oauth.yaml"`
	SessionStore    string `env:"SESSION_STORE" envDefault:"memory"`
}

// Load reads Config from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("SESSION_STORE=redis requires REDIS_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore))
	}

	if err := db.ValidateIdentifier(c.DB.UsersTable); err != nil {
		errs = append(errs, err)
	}
	if err := db.ValidateIdentifier(c.DB.MigrationsTable); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalid}, errs...)...)
	}
	return nil
}

// Providers loads the provider configuration file named by OAuthConfigPath.
// Providers without redirect_uri call back to BASE_URL.
func (c *Config) Providers() (oauth.Config, error) {
	cfg, err := oauth.LoadConfig(c.OAuthConfigPath)
	if err != nil {
		return oauth.Config{}, err
	}
	return cfg.WithDefaultRedirects(c.Server.BaseURL), nil
}

// Schema returns the table names used by stores and migrations.
// linksTable comes from the provider file's table key.
func (c *Config) Schema(linksTable string) db.Schema {
	if linksTable == "" {
		linksTable = oauth.DefaultTable
	}
	return db.Schema{UsersTable: c.DB.UsersTable, LinksTable: linksTable}
}
