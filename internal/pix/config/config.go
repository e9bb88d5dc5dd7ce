package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration, stored at ~/.config/pix/config.yaml.
// Environment variables override file values.
type Config struct {
	BaseURL string `yaml:"base_url,omitempty"`
	OwnerID string `yaml:"owner_id,omitempty"`

	// HTTPTimeout is parseable by time.ParseDuration (e.g. "5m", "30s").
	HTTPTimeout string `yaml:"http_timeout,omitempty"`
}

const (
	DefaultBaseURL = "http://localhost:8080"

	EnvBaseURL = "PIX_BASE_URL"
	EnvOwnerID = "PIX_OWNER_ID"

	DefaultHTTPTimeout = 5 * time.Minute
)

func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pix"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Load() (*Config, error) {
	cfg := &Config{
		BaseURL: DefaultBaseURL,
	}

	path, err := Path()
	if err == nil {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvOwnerID); v != "" {
		cfg.OwnerID = v
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Timeout resolves the configured HTTP timeout, falling back to the default
// on empty or malformed values.
func (c *Config) Timeout() time.Duration {
	if c.HTTPTimeout == "" {
		return DefaultHTTPTimeout
	}
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d <= 0 {
		return DefaultHTTPTimeout
	}
	return d
}
