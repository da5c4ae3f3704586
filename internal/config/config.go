// Package config loads process configuration from defaults, an optional
// YAML file and environment variables.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultAllowedOrigin is the local frontend dev server.
const DefaultAllowedOrigin = "http://localhost:5173"

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// AllowedOrigins lists the exact origins allowed to make credentialed
	// cross-origin requests.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// CORSMaxAge is the preflight cache lifetime in seconds.
	CORSMaxAge int `koanf:"cors_max_age"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MetricsEnabled mounts GET /metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:            ":8080",
		LogLevel:        "info",
		AllowedOrigins:  []string{DefaultAllowedOrigin},
		CORSMaxAge:      300,
		ShutdownTimeout: 10 * time.Second,
		MetricsEnabled:  true,
	}
}

// Validate reports the first problem found, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q: %v", ErrInvalidConfig, c.LogLevel, err)
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("%w: allowed_origins must list at least one origin", ErrInvalidConfig)
	}
	// Browsers reject "*" together with credentials.
	if slices.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("%w: allowed_origins must not contain \"*\"", ErrInvalidConfig)
	}
	for _, o := range c.AllowedOrigins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("%w: origin %q must include an http or https scheme", ErrInvalidConfig, o)
		}
		if strings.HasSuffix(o, "/") {
			return fmt.Errorf("%w: origin %q must not have a trailing slash", ErrInvalidConfig, o)
		}
	}
	if c.CORSMaxAge < 0 {
		return fmt.Errorf("%w: cors_max_age must not be negative", ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
