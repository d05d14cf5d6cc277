package manifest

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/driftwatch/deadscan/pkg/scan"
)

// npmLineRE matches `"name": "version"` pairs in pasted package.json
// fragments that fail full JSON parsing.
var npmLineRE = regexp.MustCompile(`"([^"]+)":\s*"([^"]+)"`)

type packageJSONFile struct {
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// parsePackageJSON extracts packages from package.json content. The three
// dependency groups are merged with first-occurrence-wins precedence:
// dependencies, then devDependencies, then peerDependencies. If the input
// is not valid JSON, a line-by-line scan recovers what it can from
// partial or pasted snippets.
func parsePackageJSON(raw string) []scan.ParsedPackage {
	var file packageJSONFile
	if err := json.Unmarshal([]byte(raw), &file); err != nil {
		return parsePackageJSONLines(raw)
	}

	var packages []scan.ParsedPackage
	seen := make(map[string]bool)
	for _, group := range []map[string]string{file.Dependencies, file.DevDependencies, file.PeerDependencies} {
		names := make([]string, 0, len(group))
		for name := range group {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			packages = append(packages, scan.ParsedPackage{
				Name:      name,
				Version:   stripRangeOperators(group[name]),
				Ecosystem: scan.EcosystemNPM,
			})
		}
	}
	return packages
}

func parsePackageJSONLines(raw string) []scan.ParsedPackage {
	var packages []scan.ParsedPackage
	for _, line := range strings.Split(raw, "\n") {
		m := npmLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		packages = append(packages, scan.ParsedPackage{
			Name:      m[1],
			Version:   stripRangeOperators(m[2]),
			Ecosystem: scan.EcosystemNPM,
		})
	}
	return packages
}
