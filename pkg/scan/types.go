package scan

import "time"

// Ecosystem identifies a package-hosting system with its own manifest
// format and registry API.
type Ecosystem string

const (
	EcosystemNPM      Ecosystem = "npm"
	EcosystemPyPI     Ecosystem = "pypi"
	EcosystemRubyGems Ecosystem = "rubygems"
	EcosystemGo       Ecosystem = "go"
	EcosystemCargo    Ecosystem = "cargo"
)

// Ecosystems lists every supported ecosystem.
var Ecosystems = []Ecosystem{
	EcosystemNPM,
	EcosystemPyPI,
	EcosystemRubyGems,
	EcosystemGo,
	EcosystemCargo,
}

// Valid reports whether e is one of the known ecosystems.
func (e Ecosystem) Valid() bool {
	switch e {
	case EcosystemNPM, EcosystemPyPI, EcosystemRubyGems, EcosystemGo, EcosystemCargo:
		return true
	}
	return false
}

// ParsedPackage is one dependency extracted from a manifest.
// Name and Ecosystem together form the natural key for a scan.
type ParsedPackage struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Ecosystem Ecosystem `json:"ecosystem"`
}

// Severity classifies a vulnerability advisory.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityModerate Severity = "MODERATE"
	SeverityLow      Severity = "LOW"
	SeverityUnknown  Severity = "UNKNOWN"
)

// Vulnerability is one advisory returned by the vulnerability database
// for the exact package and version queried.
type Vulnerability struct {
	ID       string   `json:"id"`
	Summary  string   `json:"summary"`
	Severity Severity `json:"severity"`
	Aliases  []string `json:"aliases"`
	URL      string   `json:"url"`
}

// MaintenanceSignals captures everything knowable about a package's
// health. Every pointer field distinguishes "unknown" (nil) from a real
// zero or false value; the scorer skips nil factors entirely instead of
// penalizing them.
type MaintenanceSignals struct {
	LastReleaseDate      *time.Time      `json:"lastReleaseDate"`
	DaysSinceLastRelease *int            `json:"daysSinceLastRelease"`
	MaintainerCount      *int            `json:"maintainerCount"`
	OpenIssueCount       *int            `json:"openIssueCount"`
	WeeklyDownloads      *int            `json:"weeklyDownloads"`
	RepositoryArchived   *bool           `json:"repositoryArchived"`
	HasSecurityPolicy    *bool           `json:"hasSecurityPolicy"`
	License              *string         `json:"license"`
	Description          *string         `json:"description"`
	Homepage             *string         `json:"homepage"`
	Repository           *string         `json:"repository"`
	Deprecated           *string         `json:"deprecated"`
	Vulnerabilities      []Vulnerability `json:"vulnerabilities"`
}

// RiskLevel buckets an overall risk score.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
	RiskHealthy  RiskLevel = "healthy"
)

// RiskFactor is one scored, weighted contribution to the overall risk.
// Weight is the raw weighting constant, not normalized.
type RiskFactor struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Weight      int    `json:"weight"`
	Description string `json:"description"`
}

// RiskScore is the weighted 0-100 risk assessment for one package.
// Overall equals round(sum(score*weight)/sum(weight)) over the factors
// present, or 50 when no factor was computable.
type RiskScore struct {
	Overall int          `json:"overall"`
	Level   RiskLevel    `json:"level"`
	Factors []RiskFactor `json:"factors"`
}

// ReplacementSuggestion is a curated alternative for a known-risky package.
type ReplacementSuggestion struct {
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	Ecosystem Ecosystem `json:"ecosystem"`
	URL       string    `json:"url"`
}

// PackageAnalysis is the full result for one package: its signals, risk
// score, and replacement suggestions. Error is set only when the whole
// fetch+score pipeline failed and a degraded analysis was substituted.
type PackageAnalysis struct {
	Package      ParsedPackage           `json:"package"`
	Signals      MaintenanceSignals      `json:"signals"`
	Risk         RiskScore               `json:"risk"`
	Replacements []ReplacementSuggestion `json:"replacements"`
	ScannedAt    time.Time               `json:"scannedAt"`
	Error        string                  `json:"error,omitempty"`
}

// ScanSummary aggregates risk levels across a scan.
type ScanSummary struct {
	TotalPackages        int `json:"totalPackages"`
	Critical             int `json:"critical"`
	High                 int `json:"high"`
	Medium               int `json:"medium"`
	Low                  int `json:"low"`
	Healthy              int `json:"healthy"`
	OverallHealthScore   int `json:"overallHealthScore"`
	TotalVulnerabilities int `json:"totalVulnerabilities"`
	DeprecatedCount      int `json:"deprecatedCount"`
}

// ScanResult is one scan's immutable record. ID and CreatedAt are
// assigned once at creation; persistence is left to external stores.
type ScanResult struct {
	ID        string            `json:"id"`
	Packages  []PackageAnalysis `json:"packages"`
	Summary   ScanSummary       `json:"summary"`
	CreatedAt time.Time         `json:"createdAt"`
	Ecosystem Ecosystem         `json:"ecosystem"`
	RawInput  string            `json:"rawInput"`
}

// Ptr returns a pointer to v. Convenience for building nullable signals.
func Ptr[T any](v T) *T { return &v }
