package config

import (
	"flag"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Flags holds command-line flag values that override file configuration.
type Flags struct {
	ConfigPath   string
	LogLevel     string
	HelperPath   string
	Timeout      string
	ExtraOptions string
	RelayServer  string
	RelayPort    int
}

// RegisterFlags registers configuration override flags on fs and returns the
// struct that will receive the parsed values. The caller owns fs.Parse, so
// subcommands can add their own flags alongside these.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}

	fs.StringVar(&f.ConfigPath, "config", "./relayprobe.toml", "Path to configuration file")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.HelperPath, "helper", "", "Path to the delivery-test helper executable")
	fs.StringVar(&f.Timeout, "timeout", "", "Per-attempt helper timeout (e.g. 12s)")
	fs.StringVar(&f.ExtraOptions, "extra-options", "", "Additional helper options, space-separated")
	fs.StringVar(&f.RelayServer, "relay", "", "Relay server to probe through")
	fs.IntVar(&f.RelayPort, "relay-port", 0, "Relay server port")

	return f
}

// Load parses a TOML configuration file and returns the Config.
// If the file does not exist, returns the default configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig FileConfig
	if err := toml.Unmarshal(data, &fileConfig); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	// Merge file config into defaults
	cfg = mergeConfig(cfg, fileConfig.Relayprobe)

	return cfg, nil
}

// ApplyFlags merges command-line flag values into the config.
// Non-zero/non-empty flag values override config file values.
func ApplyFlags(cfg Config, f *Flags) Config {
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}

	if f.HelperPath != "" {
		cfg.Helper.Path = f.HelperPath
	}

	if f.Timeout != "" {
		cfg.Helper.Timeout = f.Timeout
	}

	if f.ExtraOptions != "" {
		cfg.Helper.ExtraOptions = f.ExtraOptions
	}

	if f.RelayServer != "" {
		cfg.Relay.Server = f.RelayServer
	}

	if f.RelayPort > 0 {
		cfg.Relay.Port = f.RelayPort
	}

	return cfg
}

// LoadWithFlags loads configuration from the path specified in flags, then
// applies environment and flag overrides, in that precedence order.
func LoadWithFlags(f *Flags) (Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return cfg, err
	}
	cfg = ApplyEnv(cfg)
	return ApplyFlags(cfg, f), nil
}

// mergeConfig merges non-zero values from src into dst.
func mergeConfig(dst, src Config) Config {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}

	if src.Helper.Path != "" {
		dst.Helper.Path = src.Helper.Path
	}

	if src.Helper.Timeout != "" {
		dst.Helper.Timeout = src.Helper.Timeout
	}

	if src.Helper.ExtraOptions != "" {
		dst.Helper.ExtraOptions = src.Helper.ExtraOptions
	}

	if src.Relay.Server != "" {
		dst.Relay.Server = src.Relay.Server
	}

	if src.Relay.Port > 0 {
		dst.Relay.Port = src.Relay.Port
	}

	// Cache: enabled is explicitly set (boolean), so we merge if source has any non-zero value
	if src.Cache.Enabled {
		dst.Cache.Enabled = src.Cache.Enabled
	}

	if src.Cache.Address != "" {
		dst.Cache.Address = src.Cache.Address
	}

	if src.Cache.Password != "" {
		dst.Cache.Password = src.Cache.Password
	}

	if src.Cache.DB != 0 {
		dst.Cache.DB = src.Cache.DB
	}

	if src.Cache.TTL != "" {
		dst.Cache.TTL = src.Cache.TTL
	}

	if src.Metrics.Enabled {
		dst.Metrics.Enabled = src.Metrics.Enabled
	}

	if src.Metrics.Address != "" {
		dst.Metrics.Address = src.Metrics.Address
	}

	if src.Metrics.Path != "" {
		dst.Metrics.Path = src.Metrics.Path
	}

	return dst
}
