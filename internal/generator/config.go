package generator

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds generator endpoint configuration.
type Config struct {
	// BaseURL is the generator service root; requests go to
	// {BaseURL}/generate-problems.
	BaseURL string

	// Timeout bounds a single request. Default: 60s, since generation
	// is slow compared to ordinary API calls.
	Timeout time.Duration
}

// DefaultConfig returns a Config pointing at a local generator.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:3001",
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if u := os.Getenv("CODEDRILL_BASE_URL"); u != "" {
		cfg.BaseURL = u
	}
	if t := os.Getenv("CODEDRILL_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

// Validate checks that the base URL is an absolute http(s) URL.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid CODEDRILL_BASE_URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CODEDRILL_BASE_URL must be http or https, got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("CODEDRILL_BASE_URL has no host: %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
