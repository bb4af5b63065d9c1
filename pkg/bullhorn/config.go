// Package bullhorn implements an authenticated read-only client for the
// Bullhorn REST API: OAuth session management, Lucene search, SQL-like
// queries and by-id entity fetches.
package bullhorn

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAuthURL is the production Bullhorn OAuth host.
	DefaultAuthURL = "https://auth.bullhornstaffing.com"
	// DefaultLoginURL is the production Bullhorn REST login host.
	DefaultLoginURL = "https://rest.bullhornstaffing.com"
)

// Config holds the Bullhorn API credentials and endpoint overrides. It is
// immutable for the process lifetime.
type Config struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	AuthURL      string `yaml:"auth_url"`
	LoginURL     string `yaml:"login_url"`
}

// LoadConfig builds a config from an optional YAML file named by
// BULLHORN_CONFIG, with environment variables taking precedence over file
// values. The returned config is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if path := strings.TrimSpace(os.Getenv("BULLHORN_CONFIG")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.ClientID = envOr(os.Getenv("BULLHORN_CLIENT_ID"), cfg.ClientID)
	cfg.ClientSecret = envOr(os.Getenv("BULLHORN_CLIENT_SECRET"), cfg.ClientSecret)
	cfg.Username = envOr(os.Getenv("BULLHORN_USERNAME"), cfg.Username)
	cfg.Password = envOr(os.Getenv("BULLHORN_PASSWORD"), cfg.Password)
	cfg.AuthURL = envOr(os.Getenv("BULLHORN_AUTH_URL"), cfg.AuthURL)
	cfg.LoginURL = envOr(os.Getenv("BULLHORN_LOGIN_URL"), cfg.LoginURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.withDefaults(), nil
}

// Validate reports every missing required credential in a single error.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ClientID) == "" {
		missing = append(missing, "BULLHORN_CLIENT_ID")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		missing = append(missing, "BULLHORN_CLIENT_SECRET")
	}
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "BULLHORN_USERNAME")
	}
	if strings.TrimSpace(c.Password) == "" {
		missing = append(missing, "BULLHORN_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) withDefaults() *Config {
	if strings.TrimSpace(c.AuthURL) == "" {
		c.AuthURL = DefaultAuthURL
	}
	if strings.TrimSpace(c.LoginURL) == "" {
		c.LoginURL = DefaultLoginURL
	}
	c.AuthURL = strings.TrimRight(c.AuthURL, "/")
	c.LoginURL = strings.TrimRight(c.LoginURL, "/")
	return c
}

func envOr(value, existing string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return existing
	}
	return value
}
