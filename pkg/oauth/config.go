package oauth

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTable is the default name of the table holding OAuth links.
const DefaultTable = "oauth_identities"

// Config is the provider configuration file.
//
// Built-in providers are listed under "providers" keyed by their alias
// (facebook, github, google, linkedin, instagram, soundcloud). Anything else
// goes under "custom_providers" and must name its implementation through
// provider_class.
type Config struct {
	Providers       map[string]ProviderConfig `yaml:"providers"`
	CustomProviders map[string]ProviderConfig `yaml:"custom_providers"`
	Table           string                    `yaml:"table"`
}

// ProviderConfig holds the settings of one configured provider.
type ProviderConfig struct {
	Fields        FieldMap `yaml:"fields"`
	ClientID      string   `yaml:"client_id"`
	ClientSecret  string   `yaml:"client_secret"`
	RedirectURL   string   `yaml:"redirect_uri"`
	ProviderClass string   `yaml:"provider_class"`
	AuthURL       string   `yaml:"auth_url"`
	TokenURL      string   `yaml:"token_url"`
	UserInfoURL   string   `yaml:"userinfo_url"`
	Scopes        []string `yaml:"scope"`
}

// FieldMap names the userinfo fields GenericProvider reads.
// Dotted paths address nested objects.
type FieldMap struct {
	ID            string `yaml:"id"`
	Nickname      string `yaml:"nickname"`
	Name          string `yaml:"name"`
	Email         string `yaml:"email"`
	EmailVerified string `yaml:"email_verified"`
	Avatar        string `yaml:"avatar"`
}

// LoadConfig reads and parses the provider configuration file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, fmt.Errorf("read %s: %w", path, err))
	}
	return ParseConfig(data)
}

// envRef matches ${VAR}. A bare $ is literal.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ParseConfig parses a provider configuration document.
// ${VAR} references are expanded from the environment first so secrets can
// stay out of the file.
func ParseConfig(data []byte) (Config, error) {
	expanded := envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		return []byte(os.Getenv(string(ref[2 : len(ref)-1])))
	})

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	return cfg, nil
}

// WithDefaultRedirects returns cfg where every provider lacking redirect_uri
// calls back to baseURL + "/auth/{alias}/callback". An empty baseURL changes
// nothing.
func (c Config) WithDefaultRedirects(baseURL string) Config {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return c
	}
	c.Providers = withRedirects(c.Providers, baseURL)
	c.CustomProviders = withRedirects(c.CustomProviders, baseURL)
	return c
}

func withRedirects(in map[string]ProviderConfig, baseURL string) map[string]ProviderConfig {
	if in == nil {
		return nil
	}
	out := make(map[string]ProviderConfig, len(in))
	for alias, pc := range in {
		if pc.RedirectURL == "" {
			pc.RedirectURL = baseURL + "/auth/" + alias + "/callback"
		}
		out[alias] = pc
	}
	return out
}
