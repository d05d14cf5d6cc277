package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeRegistry serves canned signals per package name and counts the
// concurrency of in-flight Fetch calls.
type fakeRegistry struct {
	mu       sync.Mutex
	signals  map[string]MaintenanceSignals
	errs     map[string]error
	inflight int
	peak     int
	delay    time.Duration
}

func (f *fakeRegistry) Fetch(ctx context.Context, pkg ParsedPackage, refresh bool) (MaintenanceSignals, error) {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.peak {
		f.peak = f.inflight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inflight--
	f.mu.Unlock()

	if err, ok := f.errs[pkg.Name]; ok {
		return MaintenanceSignals{}, err
	}
	return f.signals[pkg.Name], nil
}

type fakeVulns struct {
	vulns map[string][]Vulnerability
	err   error
}

func (f *fakeVulns) Query(ctx context.Context, pkg ParsedPackage) ([]Vulnerability, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vulns[pkg.Name], nil
}

type fakeEnricher struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeEnricher) Enrich(ctx context.Context, signals MaintenanceSignals, credential string) MaintenanceSignals {
	f.mu.Lock()
	f.calls = append(f.calls, credential)
	f.mu.Unlock()
	signals.OpenIssueCount = Ptr(300)
	return signals
}

func pkgs(names ...string) []ParsedPackage {
	out := make([]ParsedPackage, len(names))
	for i, n := range names {
		out[i] = ParsedPackage{Name: n, Version: "1.0.0", Ecosystem: EcosystemNPM}
	}
	return out
}

func TestAnalyzePackage(t *testing.T) {
	registry := &fakeRegistry{signals: map[string]MaintenanceSignals{
		"left-pad": {
			DaysSinceLastRelease: Ptr(800),
			MaintainerCount:      Ptr(1),
			RepositoryArchived:   Ptr(true),
		},
	}}
	analyzer := NewAnalyzer(registry, nil, nil)

	got := analyzer.AnalyzePackage(context.Background(), pkgs("left-pad")[0], Options{})

	if got.Risk.Overall != 87 {
		t.Errorf("Risk.Overall = %d, want 87", got.Risk.Overall)
	}
	if got.Risk.Level != RiskCritical {
		t.Errorf("Risk.Level = %v, want critical", got.Risk.Level)
	}
	if got.Error != "" {
		t.Errorf("Error = %q, want empty", got.Error)
	}
	if got.ScannedAt.IsZero() {
		t.Error("ScannedAt should be set")
	}
}

func TestAnalyzePackageDegraded(t *testing.T) {
	registry := &fakeRegistry{errs: map[string]error{
		"ghost": errors.New("registry unreachable"),
	}}
	analyzer := NewAnalyzer(registry, nil, nil)

	got := analyzer.AnalyzePackage(context.Background(), pkgs("ghost")[0], Options{})

	if got.Error == "" {
		t.Error("Error should be set on degraded analysis")
	}
	if got.Risk.Overall != 50 || got.Risk.Level != RiskMedium {
		t.Errorf("degraded risk = %d/%v, want 50/medium", got.Risk.Overall, got.Risk.Level)
	}
	if len(got.Risk.Factors) != 1 || got.Risk.Factors[0].Name != "Data Unavailable" {
		t.Errorf("degraded factors = %v, want single Data Unavailable", got.Risk.Factors)
	}
	if got.Signals.DaysSinceLastRelease != nil || got.Signals.License != nil {
		t.Error("degraded analysis should carry all-null signals")
	}
}

func TestAnalyzePackageVulnFailOpen(t *testing.T) {
	registry := &fakeRegistry{signals: map[string]MaintenanceSignals{
		"pkg": {DaysSinceLastRelease: Ptr(10)},
	}}
	vulns := &fakeVulns{err: errors.New("osv down")}
	analyzer := NewAnalyzer(registry, vulns, nil)

	got := analyzer.AnalyzePackage(context.Background(), pkgs("pkg")[0], Options{})

	if got.Error != "" {
		t.Errorf("Error = %q, want empty (vuln failures fail open)", got.Error)
	}
	if len(got.Signals.Vulnerabilities) != 0 {
		t.Errorf("Vulnerabilities = %v, want none", got.Signals.Vulnerabilities)
	}
}

func TestAnalyzePackageAttachesVulns(t *testing.T) {
	registry := &fakeRegistry{signals: map[string]MaintenanceSignals{
		"pkg": {DaysSinceLastRelease: Ptr(10)},
	}}
	vulns := &fakeVulns{vulns: map[string][]Vulnerability{
		"pkg": {{ID: "GHSA-xxxx", Severity: SeverityCritical}},
	}}
	analyzer := NewAnalyzer(registry, vulns, nil)

	got := analyzer.AnalyzePackage(context.Background(), pkgs("pkg")[0], Options{})

	if len(got.Signals.Vulnerabilities) != 1 {
		t.Fatalf("len(Vulnerabilities) = %d, want 1", len(got.Signals.Vulnerabilities))
	}
	// Critical vuln factor (100*30) with fresh release (0*35): 3000/65 = 46.
	if got.Risk.Overall != 46 {
		t.Errorf("Risk.Overall = %d, want 46", got.Risk.Overall)
	}
}

func TestAnalyzePackageEnrichmentRequiresCredential(t *testing.T) {
	registry := &fakeRegistry{signals: map[string]MaintenanceSignals{
		"pkg": {Repository: Ptr("https://github.com/acme/pkg")},
	}}
	enricher := &fakeEnricher{}
	analyzer := NewAnalyzer(registry, nil, enricher)

	analyzer.AnalyzePackage(context.Background(), pkgs("pkg")[0], Options{})
	if len(enricher.calls) != 0 {
		t.Errorf("enricher called %d times without credential, want 0", len(enricher.calls))
	}

	got := analyzer.AnalyzePackage(context.Background(), pkgs("pkg")[0], Options{Credential: "token"})
	if len(enricher.calls) != 1 {
		t.Fatalf("enricher called %d times with credential, want 1", len(enricher.calls))
	}
	if got.Signals.OpenIssueCount == nil || *got.Signals.OpenIssueCount != 300 {
		t.Error("enriched signals should carry the overlaid issue count")
	}
}

func TestAnalyzeDependenciesBatching(t *testing.T) {
	signals := map[string]MaintenanceSignals{}
	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("pkg-%d", i)
		signals[names[i]] = MaintenanceSignals{DaysSinceLastRelease: Ptr(10)}
	}
	registry := &fakeRegistry{signals: signals, delay: 10 * time.Millisecond}
	analyzer := NewAnalyzer(registry, nil, nil)

	var progress [][2]int
	results, err := analyzer.AnalyzeDependencies(context.Background(), pkgs(names...), Options{
		OnProgress: func(done, total int) { progress = append(progress, [2]int{done, total}) },
	})
	if err != nil {
		t.Fatalf("AnalyzeDependencies() error = %v", err)
	}
	if len(results) != 12 {
		t.Fatalf("len(results) = %d, want 12", len(results))
	}

	// Order must match the input.
	for i, r := range results {
		if r.Package.Name != names[i] {
			t.Errorf("results[%d] = %s, want %s", i, r.Package.Name, names[i])
		}
	}

	// 12 packages in batches of 5: progress at 5, 10, 12.
	want := [][2]int{{5, 12}, {10, 12}, {12, 12}}
	if len(progress) != len(want) {
		t.Fatalf("progress = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("progress[%d] = %v, want %v", i, progress[i], want[i])
		}
	}

	if registry.peak > DefaultBatchSize {
		t.Errorf("peak concurrency = %d, want <= %d", registry.peak, DefaultBatchSize)
	}
}

func TestAnalyzeDependenciesIsolatesFailures(t *testing.T) {
	registry := &fakeRegistry{
		signals: map[string]MaintenanceSignals{
			"good": {DaysSinceLastRelease: Ptr(10)},
		},
		errs: map[string]error{
			"bad": errors.New("boom"),
		},
	}
	analyzer := NewAnalyzer(registry, nil, nil)

	results, err := analyzer.AnalyzeDependencies(context.Background(), pkgs("good", "bad"), Options{})
	if err != nil {
		t.Fatalf("AnalyzeDependencies() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Error != "" {
		t.Errorf("good package carries error %q", results[0].Error)
	}
	if results[1].Error == "" {
		t.Error("bad package should carry its error")
	}
	if results[1].Risk.Overall != 50 {
		t.Errorf("bad package risk = %d, want 50", results[1].Risk.Overall)
	}
}

func TestAnalyzeDependenciesCancellation(t *testing.T) {
	signals := map[string]MaintenanceSignals{}
	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("pkg-%d", i)
		signals[names[i]] = MaintenanceSignals{DaysSinceLastRelease: Ptr(10)}
	}
	registry := &fakeRegistry{signals: signals, delay: 20 * time.Millisecond}
	analyzer := NewAnalyzer(registry, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	results, err := analyzer.AnalyzeDependencies(ctx, pkgs(names...), Options{
		OnProgress: func(done, total int) {
			// Cancel after the first batch completes.
			cancel()
		},
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(results) != 5 {
		t.Errorf("len(results) = %d, want 5 (one completed batch)", len(results))
	}
}

func TestAnalyzeDependenciesEmpty(t *testing.T) {
	analyzer := NewAnalyzer(&fakeRegistry{}, nil, nil)

	results, err := analyzer.AnalyzeDependencies(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("AnalyzeDependencies() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestComputeSummary(t *testing.T) {
	analyses := []PackageAnalysis{
		{Risk: RiskScore{Overall: 90, Level: RiskCritical}, Signals: MaintenanceSignals{
			Vulnerabilities: []Vulnerability{{ID: "A"}, {ID: "B"}},
			Deprecated:      Ptr("dead"),
		}},
		{Risk: RiskScore{Overall: 70, Level: RiskHigh}},
		{Risk: RiskScore{Overall: 10, Level: RiskHealthy}},
		{Risk: RiskScore{Overall: 10, Level: RiskHealthy}},
	}

	got := ComputeSummary(analyses)

	if got.TotalPackages != 4 {
		t.Errorf("TotalPackages = %d, want 4", got.TotalPackages)
	}
	if got.Critical != 1 || got.High != 1 || got.Healthy != 2 {
		t.Errorf("level tallies = %+v", got)
	}
	// 100 - (90+70+10+10)/4 = 100 - 45 = 55
	if got.OverallHealthScore != 55 {
		t.Errorf("OverallHealthScore = %d, want 55", got.OverallHealthScore)
	}
	if got.TotalVulnerabilities != 2 {
		t.Errorf("TotalVulnerabilities = %d, want 2", got.TotalVulnerabilities)
	}
	if got.DeprecatedCount != 1 {
		t.Errorf("DeprecatedCount = %d, want 1", got.DeprecatedCount)
	}
}

func TestComputeSummaryEmpty(t *testing.T) {
	got := ComputeSummary(nil)
	if got.OverallHealthScore != 100 {
		t.Errorf("OverallHealthScore = %d, want 100 for empty scan", got.OverallHealthScore)
	}
	if got.TotalPackages != 0 {
		t.Errorf("TotalPackages = %d, want 0", got.TotalPackages)
	}
}

func TestNewScanResult(t *testing.T) {
	analyses := []PackageAnalysis{{Risk: RiskScore{Overall: 10, Level: RiskHealthy}}}

	got := NewScanResult(analyses, EcosystemNPM, `{"dependencies":{}}`)

	if got.ID == "" {
		t.Error("ID should be assigned")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if got.Ecosystem != EcosystemNPM {
		t.Errorf("Ecosystem = %v, want npm", got.Ecosystem)
	}
	if got.Summary.TotalPackages != 1 {
		t.Errorf("Summary.TotalPackages = %d, want 1", got.Summary.TotalPackages)
	}

	other := NewScanResult(analyses, EcosystemNPM, "")
	if other.ID == got.ID {
		t.Error("each scan should get a distinct ID")
	}
}
