// Package signals wires registry and repository clients into the
// analysis pipeline's signal sources.
package signals

import (
	"context"
	"time"

	"github.com/driftwatch/deadscan/pkg/cache"
	"github.com/driftwatch/deadscan/pkg/integrations/github"
	"github.com/driftwatch/deadscan/pkg/integrations/npm"
	"github.com/driftwatch/deadscan/pkg/integrations/osv"
	"github.com/driftwatch/deadscan/pkg/integrations/pypi"
	"github.com/driftwatch/deadscan/pkg/scan"
)

// DefaultTTL is how long registry responses stay cached. Registry
// metadata moves slowly; an hour keeps repeat scans cheap without
// hiding new releases for long.
const DefaultTTL = time.Hour

// Registry dispatches signal collection to the per-ecosystem registry
// clients. Ecosystems without a metadata fetcher yield an all-null
// record so that scoring degrades to the factors that remain.
type Registry struct {
	npm  *npm.Client
	pypi *pypi.Client
}

// NewRegistry creates a Registry with npm and PyPI fetchers sharing the
// given cache backend.
func NewRegistry(backend cache.Cache, ttl time.Duration) *Registry {
	return &Registry{
		npm:  npm.NewClient(backend, ttl),
		pypi: pypi.NewClient(backend, ttl),
	}
}

// Fetch collects maintenance signals for pkg from its ecosystem's registry.
func (r *Registry) Fetch(ctx context.Context, pkg scan.ParsedPackage, refresh bool) (scan.MaintenanceSignals, error) {
	switch pkg.Ecosystem {
	case scan.EcosystemNPM:
		return r.npm.FetchSignals(ctx, pkg.Name, refresh)
	case scan.EcosystemPyPI:
		return r.pypi.FetchSignals(ctx, pkg.Name, refresh)
	default:
		return scan.MaintenanceSignals{}, nil
	}
}

// NewVulnerabilitySource creates the OSV-backed vulnerability source.
func NewVulnerabilitySource(backend cache.Cache, ttl time.Duration) scan.VulnerabilitySource {
	return osv.NewClient(backend, ttl)
}

// RepoEnricher overlays GitHub repository metrics onto registry signals.
type RepoEnricher struct {
	gh *github.Client
}

// NewRepoEnricher creates a GitHub-backed enricher.
func NewRepoEnricher(backend cache.Cache, ttl time.Duration) *RepoEnricher {
	return &RepoEnricher{gh: github.NewClient(backend, ttl)}
}

// Enrich fills repository-level fields the registry cannot know. It is
// strictly additive and best-effort: fields already set stay set, and
// any lookup failure returns the input unchanged.
func (e *RepoEnricher) Enrich(ctx context.Context, signals scan.MaintenanceSignals, credential string) scan.MaintenanceSignals {
	if signals.Repository == nil {
		return signals
	}
	owner, repo, ok := github.ExtractRepo(*signals.Repository)
	if !ok {
		return signals
	}

	metrics, err := e.gh.Fetch(ctx, owner, repo, credential, false)
	if err != nil {
		return signals
	}

	signals.OpenIssueCount = scan.Ptr(metrics.OpenIssues)
	signals.RepositoryArchived = scan.Ptr(metrics.Archived)
	signals.HasSecurityPolicy = scan.Ptr(metrics.HasSecurityPolicy)
	if signals.License == nil && metrics.License != "" && metrics.License != "NOASSERTION" {
		signals.License = &metrics.License
	}
	return signals
}

// Interface conformance.
var (
	_ scan.RegistrySource = (*Registry)(nil)
	_ scan.Enricher       = (*RepoEnricher)(nil)
)
