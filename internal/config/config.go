// Package config loads deadscan configuration from a TOML file with
// environment variable overrides.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user-level settings. Every field has a working default;
// the config file and environment variables are both optional.
type Config struct {
	// GitHubToken enables repository enrichment (higher rate limits,
	// issue counts, archival status).
	GitHubToken string `toml:"github_token"`

	// Cache selects the HTTP response cache backend: "file", "redis",
	// or "none".
	Cache string `toml:"cache"`

	// RedisURL is the connection string used when Cache is "redis".
	RedisURL string `toml:"redis_url"`

	// MongoURL enables persistent scan history when set.
	MongoURL string `toml:"mongo_url"`

	// MongoDatabase is the database name for scan history.
	MongoDatabase string `toml:"mongo_database"`

	// BatchSize overrides the number of packages analyzed concurrently.
	BatchSize int `toml:"batch_size"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Cache:         "file",
		MongoDatabase: "deadscan",
	}
}

// Path returns the config file location, honoring DEADSCAN_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("DEADSCAN_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "deadscan", "config.toml"), nil
}

// Load reads the config file if present and applies environment
// overrides. A missing file is not an error.
func Load() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHubToken = v
	}
	if v := os.Getenv("DEADSCAN_CACHE"); v != "" {
		cfg.Cache = v
	}
	if v := os.Getenv("DEADSCAN_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("DEADSCAN_MONGO_URL"); v != "" {
		cfg.MongoURL = v
	}
}
