// Package osv queries the OSV.dev vulnerability database.
package osv

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/driftwatch/deadscan/pkg/cache"
	"github.com/driftwatch/deadscan/pkg/integrations"
	"github.com/driftwatch/deadscan/pkg/scan"
)

const queryURL = "https://api.osv.dev/v1/query"

// ecosystemNames maps internal ecosystem identifiers to the names OSV
// expects in query payloads.
var ecosystemNames = map[scan.Ecosystem]string{
	scan.EcosystemNPM:      "npm",
	scan.EcosystemPyPI:     "PyPI",
	scan.EcosystemRubyGems: "RubyGems",
	scan.EcosystemGo:       "Go",
	scan.EcosystemCargo:    "crates.io",
}

// Client queries OSV.dev for advisories affecting a package version.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an OSV client backed by the given cache.
func NewClient(backend cache.Cache, ttl time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "osv:", ttl, nil),
		baseURL: queryURL,
	}
}

// Query returns advisories for the exact package and version.
// Packages without advisories return an empty slice, not an error.
func (c *Client) Query(ctx context.Context, pkg scan.ParsedPackage) ([]scan.Vulnerability, error) {
	eco, ok := ecosystemNames[pkg.Ecosystem]
	if !ok {
		return nil, nil
	}

	key := string(pkg.Ecosystem) + "/" + pkg.Name + "@" + pkg.Version

	var vulns []scan.Vulnerability
	err := c.Cached(ctx, key, false, &vulns, func() error {
		payload := queryRequest{Version: pkg.Version}
		payload.Package.Name = pkg.Name
		payload.Package.Ecosystem = eco

		var resp queryResponse
		if err := c.PostJSON(ctx, c.baseURL, payload, &resp); err != nil {
			return err
		}

		vulns = make([]scan.Vulnerability, 0, len(resp.Vulns))
		for _, v := range resp.Vulns {
			vulns = append(vulns, scan.Vulnerability{
				ID:       v.ID,
				Summary:  firstNonEmpty(v.Summary, v.Details),
				Severity: extractSeverity(v),
				Aliases:  v.Aliases,
				URL:      "https://osv.dev/vulnerability/" + v.ID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vulns, nil
}

// extractSeverity determines advisory severity. CVSS scores take
// priority; database_specific severity strings are the fallback.
func extractSeverity(v osvVuln) scan.Severity {
	for _, s := range v.Severity {
		if score, ok := cvssScore(s.Score); ok {
			switch {
			case score >= 9.0:
				return scan.SeverityCritical
			case score >= 7.0:
				return scan.SeverityHigh
			case score >= 4.0:
				return scan.SeverityModerate
			default:
				return scan.SeverityLow
			}
		}
	}

	switch strings.ToUpper(v.DatabaseSpecific.Severity) {
	case "CRITICAL":
		return scan.SeverityCritical
	case "HIGH":
		return scan.SeverityHigh
	case "MODERATE", "MEDIUM":
		return scan.SeverityModerate
	case "LOW":
		return scan.SeverityLow
	}
	return scan.SeverityUnknown
}

// cvssScore parses a severity score. OSV reports either a numeric base
// score or a CVSS vector string; vectors are skipped.
func cvssScore(score string) (float64, bool) {
	if strings.HasPrefix(score, "CVSS:") {
		return 0, false
	}
	f, err := strconv.ParseFloat(score, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type queryRequest struct {
	Package struct {
		Name      string `json:"name"`
		Ecosystem string `json:"ecosystem"`
	} `json:"package"`
	Version string `json:"version"`
}

type queryResponse struct {
	Vulns []osvVuln `json:"vulns"`
}

type osvVuln struct {
	ID               string        `json:"id"`
	Summary          string        `json:"summary"`
	Details          string        `json:"details"`
	Aliases          []string      `json:"aliases"`
	Severity         []osvSeverity `json:"severity"`
	DatabaseSpecific struct {
		Severity string `json:"severity"`
	} `json:"database_specific"`
}

type osvSeverity struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}
