// Package scan implements the deadware risk analysis pipeline: maintenance
// signals are collected per package, scored into a weighted 0-100 risk
// value, paired with curated replacement suggestions, and aggregated into
// a scan result.
package scan

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/driftwatch/deadscan/pkg/observability"
)

// DefaultBatchSize bounds how many packages are analyzed concurrently.
// Batches run strictly sequentially to cap outstanding registry requests.
const DefaultBatchSize = 5

// RegistrySource fetches maintenance signals from a package registry.
// Unknowable fields must be nil, never zero.
type RegistrySource interface {
	Fetch(ctx context.Context, pkg ParsedPackage, refresh bool) (MaintenanceSignals, error)
}

// VulnerabilitySource queries a vulnerability database for advisories
// affecting the exact package and version.
type VulnerabilitySource interface {
	Query(ctx context.Context, pkg ParsedPackage) ([]Vulnerability, error)
}

// Enricher overlays repository-level signals (issue counts, archival
// status) onto an existing record. Implementations must be best-effort:
// on any failure they return the input unchanged.
type Enricher interface {
	Enrich(ctx context.Context, signals MaintenanceSignals, credential string) MaintenanceSignals
}

// Options configures a scan run.
type Options struct {
	BatchSize  int                  // Packages analyzed concurrently per batch (default: 5)
	Credential string               // Bearer token enabling repository enrichment (optional)
	Refresh    bool                 // Bypass HTTP response cache
	OnProgress func(int, int)       // Called after each batch with (completed, total)
	Logger     func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Analyzer runs the fetch → score → advise pipeline.
type Analyzer struct {
	registry RegistrySource
	vulns    VulnerabilitySource
	enricher Enricher
	config   ScoreConfig
	now      func() time.Time
}

// NewAnalyzer creates an Analyzer over the given signal sources.
// vulns and enricher may be nil, disabling those stages.
func NewAnalyzer(registry RegistrySource, vulns VulnerabilitySource, enricher Enricher) *Analyzer {
	return &Analyzer{
		registry: registry,
		vulns:    vulns,
		enricher: enricher,
		config:   DefaultScoreConfig(),
		now:      time.Now,
	}
}

// WithScoreConfig returns a copy of the Analyzer using cfg for scoring.
func (a *Analyzer) WithScoreConfig(cfg ScoreConfig) *Analyzer {
	c := *a
	c.config = cfg
	return &c
}

// AnalyzePackage fetches signals and vulnerabilities concurrently,
// optionally enriches via the caller's credential, scores the result, and
// attaches replacement suggestions. Any failure in the registry fetch is
// converted into a degraded medium-risk analysis; it never propagates.
func (a *Analyzer) AnalyzePackage(ctx context.Context, pkg ParsedPackage, opts Options) PackageAnalysis {
	opts = opts.WithDefaults()

	var (
		vulns   []Vulnerability
		vulnErr error
		wg      sync.WaitGroup
	)
	if a.vulns != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vulns, vulnErr = a.vulns.Query(ctx, pkg)
		}()
	}

	signals, err := a.registry.Fetch(ctx, pkg, opts.Refresh)
	if err != nil {
		wg.Wait()
		opts.Logger("fetch failed: %s: %v", pkg.Name, err)
		return a.degraded(pkg, err)
	}

	if a.enricher != nil && opts.Credential != "" {
		signals = a.enricher.Enrich(ctx, signals, opts.Credential)
	}

	wg.Wait()
	if vulnErr != nil {
		// Fail open: missing vulnerability data is treated as an empty
		// advisory list, not as an error.
		opts.Logger("vulnerability query failed: %s: %v", pkg.Name, vulnErr)
		vulns = nil
	}
	signals.Vulnerabilities = vulns

	return PackageAnalysis{
		Package:      pkg,
		Signals:      signals,
		Risk:         a.config.Score(signals),
		Replacements: Replacements(pkg),
		ScannedAt:    a.now(),
	}
}

// degraded builds the substitute analysis for a package whose pipeline
// failed entirely: all-null signals and a single synthetic factor that
// forces the overall risk to exactly 50 (medium).
func (a *Analyzer) degraded(pkg ParsedPackage, err error) PackageAnalysis {
	return PackageAnalysis{
		Package: pkg,
		Signals: MaintenanceSignals{},
		Risk: RiskScore{
			Overall: a.config.UnknownScore,
			Level:   a.config.Level(a.config.UnknownScore),
			Factors: []RiskFactor{{
				Name:        "Data Unavailable",
				Score:       50,
				Weight:      100,
				Description: "Could not fetch data: " + err.Error(),
			}},
		},
		ScannedAt: a.now(),
		Error:     err.Error(),
	}
}

// AnalyzeDependencies analyzes packages in fixed-size batches. Within a
// batch every package is analyzed concurrently; batches run sequentially.
// OnProgress fires once per batch. Cancelling ctx stops the scan at the
// next batch boundary, returning the analyses completed so far together
// with ctx.Err(); in-flight requests of the current batch are not
// interrupted mid-batch.
func (a *Analyzer) AnalyzeDependencies(ctx context.Context, packages []ParsedPackage, opts Options) ([]PackageAnalysis, error) {
	opts = opts.WithDefaults()
	total := len(packages)
	results := make([]PackageAnalysis, 0, total)

	observability.Scan().OnScanStart(ctx, total)

	for start := 0; start < total; start += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := min(start+opts.BatchSize, total)
		batch := make([]PackageAnalysis, end-start)

		var wg sync.WaitGroup
		for i, pkg := range packages[start:end] {
			i, pkg := i, pkg
			wg.Add(1)
			go func() {
				defer wg.Done()
				batch[i] = a.AnalyzePackage(ctx, pkg, opts)
			}()
		}
		wg.Wait()

		for _, analysis := range batch {
			observability.Scan().OnPackageAnalyzed(ctx, analysis.Package.Name, analysis.Risk.Overall, analysis.Error != "")
		}
		results = append(results, batch...)

		if opts.OnProgress != nil {
			opts.OnProgress(end, total)
		}
	}

	observability.Scan().OnScanComplete(ctx, total, nil)
	return results, nil
}

// ComputeSummary tallies risk levels, vulnerabilities, and deprecations
// across analyses. An empty scan is vacuously healthy (score 100).
func ComputeSummary(analyses []PackageAnalysis) ScanSummary {
	summary := ScanSummary{TotalPackages: len(analyses)}

	totalRisk := 0
	for _, a := range analyses {
		switch a.Risk.Level {
		case RiskCritical:
			summary.Critical++
		case RiskHigh:
			summary.High++
		case RiskMedium:
			summary.Medium++
		case RiskLow:
			summary.Low++
		case RiskHealthy:
			summary.Healthy++
		}
		totalRisk += a.Risk.Overall
		summary.TotalVulnerabilities += len(a.Signals.Vulnerabilities)
		if a.Signals.Deprecated != nil {
			summary.DeprecatedCount++
		}
	}

	summary.OverallHealthScore = 100
	if len(analyses) > 0 {
		summary.OverallHealthScore = int(math.Round(100 - float64(totalRisk)/float64(len(analyses))))
	}
	return summary
}

// NewScanResult bundles analyses into an immutable scan record with a
// fresh identifier and creation timestamp.
func NewScanResult(analyses []PackageAnalysis, ecosystem Ecosystem, rawInput string) ScanResult {
	return ScanResult{
		ID:        uuid.NewString(),
		Packages:  analyses,
		Summary:   ComputeSummary(analyses),
		CreatedAt: time.Now().UTC(),
		Ecosystem: ecosystem,
		RawInput:  rawInput,
	}
}
