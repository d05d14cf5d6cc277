package manifest

import (
	"regexp"
	"strings"

	"github.com/driftwatch/deadscan/pkg/scan"
)

// gemRE matches `gem 'name', 'version'` declarations with single or
// double quotes; the version argument is optional.
var gemRE = regexp.MustCompile(`gem\s+['"]([^'"]+)['"](?:,\s*['"]([^'"]+)['"])?`)

// parseGemfile extracts packages from Gemfile content. Gems declared
// without a version constraint are recorded with the literal version
// "latest".
func parseGemfile(raw string) []scan.ParsedPackage {
	var packages []scan.ParsedPackage
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		m := gemRE.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}

		version := stripRangeOperators(m[2])
		if version == "" {
			version = "latest"
		}
		packages = append(packages, scan.ParsedPackage{
			Name:      m[1],
			Version:   version,
			Ecosystem: scan.EcosystemRubyGems,
		})
	}
	return packages
}
