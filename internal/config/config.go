// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// LoadingDelayMS is the delay between a valid submit and its result.
	LoadingDelayMS int `koanf:"loading_delay_ms"`
	// ErrorDisplayMS is how long a validation error stays on screen.
	ErrorDisplayMS int `koanf:"error_display_ms"`
	// SessionTTLSeconds expires form sessions after this much inactivity.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`
	// MaxSessions caps the number of live form sessions.
	MaxSessions int `koanf:"max_sessions"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		LoadingDelayMS:    300,
		ErrorDisplayMS:    5000,
		SessionTTLSeconds: 1800,
		MaxSessions:       10_000,
	}
}

// LoadingDelay returns LoadingDelayMS as a duration.
func (c *Config) LoadingDelay() time.Duration {
	return time.Duration(c.LoadingDelayMS) * time.Millisecond
}

// ErrorDisplay returns ErrorDisplayMS as a duration.
func (c *Config) ErrorDisplay() time.Duration {
	return time.Duration(c.ErrorDisplayMS) * time.Millisecond
}

// SessionTTL returns SessionTTLSeconds as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LoadingDelayMS < 0:
		return fmt.Errorf("%w: loading_delay_ms must not be negative", ErrInvalidConfig)
	case c.ErrorDisplayMS <= 0:
		return fmt.Errorf("%w: error_display_ms must be positive", ErrInvalidConfig)
	case c.SessionTTLSeconds <= 0:
		return fmt.Errorf("%w: session_ttl_seconds must be positive", ErrInvalidConfig)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
