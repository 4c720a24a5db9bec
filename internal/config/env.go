package config

import "os"

// ApplyEnv applies environment variable overrides to the configuration.
// Environment variables take precedence over TOML config but are overridden by command-line flags.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("RELAYPROBE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("RELAYPROBE_HELPER_PATH"); v != "" {
		cfg.Helper.Path = v
	}
	if v := os.Getenv("RELAYPROBE_HELPER_TIMEOUT"); v != "" {
		cfg.Helper.Timeout = v
	}
	if v := os.Getenv("RELAYPROBE_RELAY_SERVER"); v != "" {
		cfg.Relay.Server = v
	}
	if v := os.Getenv("RELAYPROBE_CACHE_ADDRESS"); v != "" {
		cfg.Cache.Address = v
		cfg.Cache.Enabled = true
	}
	if v := os.Getenv("RELAYPROBE_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}

	return cfg
}
