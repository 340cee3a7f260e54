package handoff

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds handoff configuration.
type Config struct {
	// BaseLocation is the application's base location; spawned sessions
	// are opened at BaseLocation?autostart=true&handoff=<key>.
	BaseLocation string

	// Timeout bounds each side of the handshake: how long the origin waits
	// for the spawned session to report ready, and how long the spawned
	// session waits for the payload. Default: 30s.
	Timeout time.Duration

	// PollInterval is how often slot state is re-read. Default: 100ms.
	PollInterval time.Duration

	// LaunchCommand is the command prefix that opens a new terminal
	// session, e.g. ["tmux", "new-window"]. The codedrill executable and
	// its "open <location>" arguments are appended.
	LaunchCommand []string
}

// DefaultConfig returns a Config with sensible defaults. Inside tmux the
// launcher opens a new tmux window.
func DefaultConfig() Config {
	cfg := Config{
		BaseLocation: "codedrill://practice",
		Timeout:      30 * time.Second,
		PollInterval: 100 * time.Millisecond,
	}
	if os.Getenv("TMUX") != "" {
		cfg.LaunchCommand = []string{"tmux", "new-window"}
	}
	return cfg
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if l := os.Getenv("CODEDRILL_LAUNCH"); l != "" {
		cfg.LaunchCommand = strings.Fields(l)
	}
	if t := os.Getenv("CODEDRILL_HANDOFF_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}
	if p := os.Getenv("CODEDRILL_HANDOFF_POLL"); p != "" {
		if d, err := time.ParseDuration(p); err == nil {
			cfg.PollInterval = d
		}
	}

	return cfg
}

// Validate checks timing values and the base location.
func (c Config) Validate() error {
	if _, err := url.Parse(c.BaseLocation); err != nil || c.BaseLocation == "" {
		return fmt.Errorf("invalid base location %q", c.BaseLocation)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("CODEDRILL_HANDOFF_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("CODEDRILL_HANDOFF_POLL must be positive, got %s", c.PollInterval)
	}
	return nil
}
