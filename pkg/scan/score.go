package scan

import (
	"fmt"
	"math"
	"strings"
)

// ScoreConfig holds the weighting constants and bucket thresholds used by
// the risk scorer. Tests can supply a modified copy; production code uses
// DefaultScoreConfig.
type ScoreConfig struct {
	// Factor weights (raw, not normalized).
	WeightFreshness  int
	WeightBusFactor  int
	WeightRepoStatus int
	WeightIssues     int
	WeightLicense    int
	WeightVulns      int
	WeightDeprecated int

	// Level thresholds on the overall score.
	CriticalAt int
	HighAt     int
	MediumAt   int
	LowAt      int

	// Freshness bucket boundaries, in days since the last release.
	FreshDays     int
	SlowingDays   int
	StaleDays     int
	AbandonedDays int

	// Bus-factor boundaries on the maintainer count. Below Adequate,
	// counts of two, one, and zero have fixed scores.
	HealthyMaintainers  int
	AdequateMaintainers int

	// Issue backlog boundaries.
	BacklogNotable int
	BacklogLarge   int
	BacklogSevere  int

	// UnknownScore is the overall score when no factor was computable.
	// Unknown deliberately maps to medium risk, never to healthy.
	UnknownScore int
}

// DefaultScoreConfig returns the standard scoring configuration.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		WeightFreshness:  35,
		WeightBusFactor:  25,
		WeightRepoStatus: 20,
		WeightIssues:     10,
		WeightLicense:    10,
		WeightVulns:      30,
		WeightDeprecated: 25,
		CriticalAt:       80,
		HighAt:           60,
		MediumAt:         40,
		LowAt:            20,

		FreshDays:     90,
		SlowingDays:   180,
		StaleDays:     365,
		AbandonedDays: 730,

		HealthyMaintainers:  5,
		AdequateMaintainers: 3,

		BacklogNotable: 50,
		BacklogLarge:   200,
		BacklogSevere:  500,

		UnknownScore: 50,
	}
}

// permissiveLicenses is the allow-list matched as substrings against the
// registry-reported license string.
var permissiveLicenses = []string{
	"MIT",
	"Apache-2.0",
	"BSD-2-Clause",
	"BSD-3-Clause",
	"ISC",
	"Unlicense",
}

// ComputeRiskScore maps maintenance signals to a weighted risk score
// using the default configuration. It is a pure function: identical
// signals always produce an identical score.
func ComputeRiskScore(signals MaintenanceSignals) RiskScore {
	return DefaultScoreConfig().Score(signals)
}

// Score computes the weighted risk score for signals. Factors whose
// signal is nil are omitted entirely rather than scored as zero.
func (c ScoreConfig) Score(signals MaintenanceSignals) RiskScore {
	var factors []RiskFactor
	weightedSum := 0
	totalWeight := 0

	add := func(f RiskFactor) {
		factors = append(factors, f)
		weightedSum += f.Score * f.Weight
		totalWeight += f.Weight
	}

	if signals.DaysSinceLastRelease != nil {
		add(c.freshnessFactor(*signals.DaysSinceLastRelease))
	}
	if signals.MaintainerCount != nil {
		add(c.busFactor(*signals.MaintainerCount))
	}
	if signals.RepositoryArchived != nil {
		add(repoStatusFactor(*signals.RepositoryArchived, c.WeightRepoStatus))
	}
	if signals.OpenIssueCount != nil {
		add(c.issueFactor(*signals.OpenIssueCount))
	}
	if signals.License != nil {
		add(licenseFactor(*signals.License, c.WeightLicense))
	}
	if len(signals.Vulnerabilities) > 0 {
		add(vulnFactor(signals.Vulnerabilities, c.WeightVulns))
	}
	if signals.Deprecated != nil {
		add(RiskFactor{
			Name:        "Deprecated",
			Score:       90,
			Weight:      c.WeightDeprecated,
			Description: "Package is marked deprecated by its registry",
		})
	}

	overall := c.UnknownScore
	if totalWeight > 0 {
		overall = int(math.Round(float64(weightedSum) / float64(totalWeight)))
	}

	return RiskScore{
		Overall: overall,
		Level:   c.Level(overall),
		Factors: factors,
	}
}

// Level buckets an overall score into a risk level.
func (c ScoreConfig) Level(score int) RiskLevel {
	switch {
	case score >= c.CriticalAt:
		return RiskCritical
	case score >= c.HighAt:
		return RiskHigh
	case score >= c.MediumAt:
		return RiskMedium
	case score >= c.LowAt:
		return RiskLow
	default:
		return RiskHealthy
	}
}

// RiskLevelFromScore buckets score using the default thresholds.
func RiskLevelFromScore(score int) RiskLevel {
	return DefaultScoreConfig().Level(score)
}

func (c ScoreConfig) freshnessFactor(days int) RiskFactor {
	var score int
	switch {
	case days < c.FreshDays:
		score = 0
	case days < c.SlowingDays:
		score = 20
	case days < c.StaleDays:
		score = 45
	case days < c.AbandonedDays:
		score = 70
	default:
		score = 95
	}

	var desc string
	switch {
	case days < c.FreshDays:
		desc = fmt.Sprintf("Last release %d days ago - actively maintained", days)
	case days < c.StaleDays:
		desc = fmt.Sprintf("Last release %d days ago - updates slowing", days)
	default:
		desc = fmt.Sprintf("Last release %d days ago - possibly abandoned", days)
	}

	return RiskFactor{Name: "Release Freshness", Score: score, Weight: c.WeightFreshness, Description: desc}
}

func (c ScoreConfig) busFactor(count int) RiskFactor {
	var score int
	switch {
	case count >= c.HealthyMaintainers:
		score = 0
	case count >= c.AdequateMaintainers:
		score = 15
	case count == 2:
		score = 35
	case count == 1:
		score = 65
	default:
		score = 95
	}

	var desc string
	switch {
	case count >= c.AdequateMaintainers:
		desc = fmt.Sprintf("%d maintainers - healthy bus factor", count)
	case count == 1:
		desc = "Solo maintainer - single point of failure"
	case count == 0:
		desc = "No listed maintainers - high risk"
	default:
		desc = fmt.Sprintf("%d maintainers", count)
	}

	return RiskFactor{Name: "Bus Factor", Score: score, Weight: c.WeightBusFactor, Description: desc}
}

func repoStatusFactor(archived bool, weight int) RiskFactor {
	if archived {
		return RiskFactor{
			Name:        "Repository Status",
			Score:       100,
			Weight:      weight,
			Description: "Repository is archived - no further updates expected",
		}
	}
	return RiskFactor{
		Name:        "Repository Status",
		Score:       0,
		Weight:      weight,
		Description: "Repository is active",
	}
}

func (c ScoreConfig) issueFactor(issues int) RiskFactor {
	var score int
	switch {
	case issues < c.BacklogNotable:
		score = 0
	case issues < c.BacklogLarge:
		score = 25
	case issues < c.BacklogSevere:
		score = 50
	default:
		score = 75
	}

	desc := fmt.Sprintf("%d open issues - significant backlog", issues)
	if issues < c.BacklogNotable {
		desc = fmt.Sprintf("%d open issues - manageable", issues)
	}

	return RiskFactor{Name: "Issue Backlog", Score: score, Weight: c.WeightIssues, Description: desc}
}

func licenseFactor(license string, weight int) RiskFactor {
	for _, known := range permissiveLicenses {
		if strings.Contains(license, known) {
			return RiskFactor{
				Name:        "License",
				Score:       0,
				Weight:      weight,
				Description: fmt.Sprintf("Permissive license (%s)", license),
			}
		}
	}
	return RiskFactor{
		Name:        "License",
		Score:       20,
		Weight:      weight,
		Description: fmt.Sprintf("License: %s - review terms", license),
	}
}

func vulnFactor(vulns []Vulnerability, weight int) RiskFactor {
	var hasCritical, hasHigh bool
	for _, v := range vulns {
		switch v.Severity {
		case SeverityCritical:
			hasCritical = true
		case SeverityHigh:
			hasHigh = true
		}
	}

	var score int
	var desc string
	switch {
	case hasCritical:
		score = 100
		desc = fmt.Sprintf("%d known vulnerabilities including critical severity", len(vulns))
	case hasHigh:
		score = 85
		desc = fmt.Sprintf("%d known vulnerabilities including high severity", len(vulns))
	case len(vulns) >= 5:
		score = 75
		desc = fmt.Sprintf("%d known vulnerabilities", len(vulns))
	case len(vulns) >= 2:
		score = 60
		desc = fmt.Sprintf("%d known vulnerabilities", len(vulns))
	default:
		score = 45
		desc = "1 known vulnerability"
	}

	return RiskFactor{Name: "Security Vulnerabilities", Score: score, Weight: weight, Description: desc}
}
