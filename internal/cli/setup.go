package cli

import (
	"context"

	"github.com/driftwatch/deadscan/internal/config"
	"github.com/driftwatch/deadscan/pkg/cache"
	"github.com/driftwatch/deadscan/pkg/errors"
	"github.com/driftwatch/deadscan/pkg/history"
	"github.com/driftwatch/deadscan/pkg/scan"
	"github.com/driftwatch/deadscan/pkg/signals"
)

// buildCache selects the HTTP response cache backend from config.
func buildCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache {
	case "", "file":
		return cache.NewFileCache("")
	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "cache is set to redis but redis_url is empty")
		}
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend: %s", cfg.Cache)
	}
}

// buildAnalyzer wires the registry, vulnerability, and enrichment
// sources into an analyzer sharing one cache backend.
func buildAnalyzer(backend cache.Cache) *scan.Analyzer {
	return scan.NewAnalyzer(
		signals.NewRegistry(backend, signals.DefaultTTL),
		signals.NewVulnerabilitySource(backend, signals.DefaultTTL),
		signals.NewRepoEnricher(backend, signals.DefaultTTL),
	)
}

// buildStore selects the scan history store. Without a Mongo URL scans
// are held in memory for the lifetime of the process.
func buildStore(ctx context.Context, cfg config.Config) (history.Store, error) {
	if cfg.MongoURL == "" {
		return history.NewMemoryStore(), nil
	}
	return history.NewMongoStore(ctx, cfg.MongoURL, cfg.MongoDatabase)
}
