package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEADSCAN_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("DEADSCAN_CACHE", "")
	t.Setenv("DEADSCAN_REDIS_URL", "")
	t.Setenv("DEADSCAN_MONGO_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache != "file" {
		t.Errorf("Cache = %q, want file", cfg.Cache)
	}
	if cfg.MongoDatabase != "deadscan" {
		t.Errorf("MongoDatabase = %q, want deadscan", cfg.MongoDatabase)
	}
	if cfg.GitHubToken != "" || cfg.MongoURL != "" {
		t.Errorf("unexpected non-defaults: %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `github_token = "ghp_filetoken"
cache = "redis"
redis_url = "redis://localhost:6379/0"
mongo_url = "mongodb://localhost:27017"
batch_size = 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEADSCAN_CONFIG", path)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("DEADSCAN_CACHE", "")
	t.Setenv("DEADSCAN_REDIS_URL", "")
	t.Setenv("DEADSCAN_MONGO_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GitHubToken != "ghp_filetoken" {
		t.Errorf("GitHubToken = %q", cfg.GitHubToken)
	}
	if cfg.Cache != "redis" || cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("cache settings = %q/%q", cfg.Cache, cfg.RedisURL)
	}
	if cfg.BatchSize != 10 {
		t.Errorf("BatchSize = %d, want 10", cfg.BatchSize)
	}
	// Fields absent from the file keep their defaults.
	if cfg.MongoDatabase != "deadscan" {
		t.Errorf("MongoDatabase = %q, want default", cfg.MongoDatabase)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`github_token = "from-file"`+"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEADSCAN_CONFIG", path)
	t.Setenv("GITHUB_TOKEN", "from-env")
	t.Setenv("DEADSCAN_CACHE", "none")
	t.Setenv("DEADSCAN_REDIS_URL", "")
	t.Setenv("DEADSCAN_MONGO_URL", "mongodb://env:27017")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GitHubToken != "from-env" {
		t.Errorf("GitHubToken = %q, want env override", cfg.GitHubToken)
	}
	if cfg.Cache != "none" {
		t.Errorf("Cache = %q, want none", cfg.Cache)
	}
	if cfg.MongoURL != "mongodb://env:27017" {
		t.Errorf("MongoURL = %q, want env override", cfg.MongoURL)
	}
}

func TestPathHonorsOverride(t *testing.T) {
	t.Setenv("DEADSCAN_CONFIG", "/etc/deadscan/config.toml")

	got, err := Path()
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if got != "/etc/deadscan/config.toml" {
		t.Errorf("Path() = %q", got)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEADSCAN_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}
