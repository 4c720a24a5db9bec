// Package config provides configuration management for the relay probe.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FileConfig is the top-level wrapper for the shared configuration file.
// This allows relayprobe to live in a config file shared with other tools.
type FileConfig struct {
	Relayprobe Config `toml:"relayprobe"`
}

// Config holds the complete relay probe configuration.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Helper   HelperConfig  `toml:"helper"`
	Relay    RelayConfig   `toml:"relay"`
	Cache    CacheConfig   `toml:"cache"`
	Metrics  MetricsConfig `toml:"metrics"`
}

// HelperConfig describes the external delivery-test helper.
type HelperConfig struct {
	// Path is the absolute path to the helper executable.
	Path string `toml:"path"`

	// Timeout bounds one helper attempt, as a duration string.
	Timeout string `toml:"timeout"`

	// ExtraOptions are additional helper arguments, space-separated.
	// Restricted to alphanumerics, space, and ",._/-".
	ExtraOptions string `toml:"extra_options"`
}

// RelayConfig identifies the relay to probe through.
type RelayConfig struct {
	Server string `toml:"server"`
	Port   int    `toml:"port"`
}

// CacheConfig holds configuration for the Redis verdict cache.
type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	Address  string `toml:"address"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      string `toml:"ttl"`
}

// MetricsConfig holds configuration for Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Path    string `toml:"path"`
}

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		LogLevel: "info",
		Helper: HelperConfig{
			Path:    "/usr/bin/swaks",
			Timeout: "12s",
		},
		Relay: RelayConfig{
			Port: 25,
		},
		Cache: CacheConfig{
			Enabled: false,
			Address: "localhost:6379",
			TTL:     "15m",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9101",
			Path:    "/metrics",
		},
	}
}

// extraOptionsPattern is the restricted character set for admin-supplied
// helper options. Anything outside it is a configuration error.
var extraOptionsPattern = regexp.MustCompile(`^[A-Za-z0-9 ,._/-]*$`)

// Validate checks that the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Helper.Path == "" {
		return errors.New("helper path is required")
	}

	if c.Helper.Timeout != "" {
		if _, err := time.ParseDuration(c.Helper.Timeout); err != nil {
			return fmt.Errorf("invalid helper timeout: %w", err)
		}
	}

	if !extraOptionsPattern.MatchString(c.Helper.ExtraOptions) {
		return fmt.Errorf("helper extra_options contains characters outside [A-Za-z0-9 ,._/-]: %q", c.Helper.ExtraOptions)
	}

	if c.Relay.Server == "" {
		return errors.New("relay server is required")
	}

	if c.Relay.Port < 1 || c.Relay.Port > 65535 {
		return fmt.Errorf("invalid relay port %d", c.Relay.Port)
	}

	if c.Cache.Enabled {
		if c.Cache.Address == "" {
			return errors.New("cache address is required when the cache is enabled")
		}
		if c.Cache.TTL != "" {
			if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
				return fmt.Errorf("invalid cache ttl: %w", err)
			}
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			return errors.New("metrics address is required when metrics are enabled")
		}
		if c.Metrics.Path == "" {
			return errors.New("metrics path is required when metrics are enabled")
		}
	}

	return nil
}

// AttemptTimeout returns the helper timeout as a time.Duration.
// Returns 12 seconds if not configured or invalid.
func (c *HelperConfig) AttemptTimeout() time.Duration {
	if c.Timeout == "" {
		return 12 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 12 * time.Second
	}
	return d
}

// ExtraArgs returns the extra options split into individual arguments.
func (c *HelperConfig) ExtraArgs() []string {
	return strings.Fields(c.ExtraOptions)
}

// VerdictTTL returns the cache TTL as a time.Duration.
// Returns 15 minutes if not configured or invalid.
func (c *CacheConfig) VerdictTTL() time.Duration {
	if c.TTL == "" {
		return 15 * time.Minute
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}
