package manifest

import (
	"regexp"
	"strings"

	"github.com/driftwatch/deadscan/pkg/scan"
)

// goRequireRE matches one require entry: a module path followed by a
// version, with the leading "v" stripped from the version.
var goRequireRE = regexp.MustCompile(`^(\S+)\s+v?(.+)$`)

// parseGoMod extracts packages from go.mod content. Both `require (...)`
// blocks and bare `require` lines are recognized.
func parseGoMod(raw string) []scan.ParsedPackage {
	var packages []scan.ParsedPackage
	inBlock := false

	for _, line := range strings.Split(raw, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "require (":
			inBlock = true
			continue
		case trimmed == ")":
			inBlock = false
			continue
		}

		if !inBlock && !strings.HasPrefix(trimmed, "require ") {
			continue
		}

		entry := strings.TrimPrefix(trimmed, "require ")
		m := goRequireRE.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		packages = append(packages, scan.ParsedPackage{
			Name:      m[1],
			Version:   m[2],
			Ecosystem: scan.EcosystemGo,
		})
	}
	return packages
}
