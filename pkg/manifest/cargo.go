package manifest

import (
	"regexp"
	"strings"

	"github.com/driftwatch/deadscan/pkg/scan"
)

var (
	// cargoTableRE matches [dependencies]-family section headers,
	// including [dev-dependencies] and [target.'cfg(unix)'.dependencies].
	cargoTableRE = regexp.MustCompile(`^\[(.*dependencies.*)\]$`)

	// cargoSimpleRE matches `name = "version"` entries.
	cargoSimpleRE = regexp.MustCompile(`^([a-zA-Z0-9_-]+)\s*=\s*"([^"]+)"`)

	// cargoInlineRE matches inline-table entries like
	// `name = { version = "1.0", features = [...] }`.
	cargoInlineRE = regexp.MustCompile(`^([a-zA-Z0-9_-]+)\s*=\s*\{.*version\s*=\s*"([^"]+)"`)
)

// parseCargoTOML extracts packages from Cargo.toml content. Only entries
// inside a [dependencies]-family table are collected; any other section
// header closes the current table.
func parseCargoTOML(raw string) []scan.ParsedPackage {
	var packages []scan.ParsedPackage
	inDeps := false

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if cargoTableRE.MatchString(trimmed) {
			inDeps = true
			continue
		}
		if strings.HasPrefix(trimmed, "[") && !strings.Contains(trimmed, "dependencies") {
			inDeps = false
			continue
		}
		if !inDeps {
			continue
		}

		if m := cargoSimpleRE.FindStringSubmatch(trimmed); m != nil {
			packages = append(packages, scan.ParsedPackage{
				Name:      m[1],
				Version:   m[2],
				Ecosystem: scan.EcosystemCargo,
			})
			continue
		}
		if m := cargoInlineRE.FindStringSubmatch(trimmed); m != nil {
			packages = append(packages, scan.ParsedPackage{
				Name:      m[1],
				Version:   m[2],
				Ecosystem: scan.EcosystemCargo,
			})
		}
	}
	return packages
}
