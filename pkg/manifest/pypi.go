package manifest

import (
	"regexp"
	"strings"

	"github.com/driftwatch/deadscan/pkg/scan"
)

// requirementRE matches a requirement line: a package name optionally
// followed by a version specifier (==, >=, ~=, etc.).
var requirementRE = regexp.MustCompile(`^([a-zA-Z0-9_.-]+)\s*(?:[><=!~]+\s*(.+))?$`)

// parseRequirements extracts packages from requirements.txt content.
// Blank lines, comments, and option flags (lines starting with "-") are
// skipped. A requirement without a version specifier is recorded with the
// literal version "latest".
func parseRequirements(raw string) []scan.ParsedPackage {
	var packages []scan.ParsedPackage
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "-") {
			continue
		}

		m := requirementRE.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}

		version := strings.TrimSpace(m[2])
		if version == "" {
			version = "latest"
		}
		packages = append(packages, scan.ParsedPackage{
			Name:      m[1],
			Version:   version,
			Ecosystem: scan.EcosystemPyPI,
		})
	}
	return packages
}
