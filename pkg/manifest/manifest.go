// Package manifest detects the ecosystem of a raw dependency manifest and
// extracts its declared packages.
//
// Parsing is deliberately forgiving: input arrives as pasted or uploaded
// text, so every extractor tolerates partial or malformed content and in
// the worst case returns an empty package list instead of an error.
package manifest

import (
	"encoding/json"
	"strings"

	"github.com/driftwatch/deadscan/pkg/scan"
)

// DetectEcosystem classifies raw manifest text using ordered heuristics.
// JSON detection runs first so that a package.json containing ">=" in a
// version string is never misclassified as a requirements file. Input
// that matches nothing defaults to npm.
func DetectEcosystem(raw string) scan.Ecosystem {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "{") {
		var parsed struct {
			Dependencies     map[string]string `json:"dependencies"`
			DevDependencies  map[string]string `json:"devDependencies"`
			PeerDependencies map[string]string `json:"peerDependencies"`
		}
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			if parsed.Dependencies != nil || parsed.DevDependencies != nil || parsed.PeerDependencies != nil {
				return scan.EcosystemNPM
			}
		}
	}

	if strings.Contains(trimmed, "[dependencies]") &&
		(strings.Contains(trimmed, "version =") || strings.Contains(trimmed, "version=")) {
		return scan.EcosystemCargo
	}

	if strings.HasPrefix(trimmed, "module ") || strings.Contains(trimmed, "require (") {
		return scan.EcosystemGo
	}

	if strings.Contains(trimmed, "gem '") || strings.Contains(trimmed, `gem "`) ||
		strings.Contains(trimmed, `source "https://rubygems.org"`) {
		return scan.EcosystemRubyGems
	}

	if strings.Contains(trimmed, "==") || strings.Contains(trimmed, ">=") {
		return scan.EcosystemPyPI
	}

	return scan.EcosystemNPM
}

// Parse detects the ecosystem of raw and extracts its packages. It never
// fails: unparseable input yields an empty list, which callers surface as
// a "no packages found" condition.
func Parse(raw string) []scan.ParsedPackage {
	return ParseAs(raw, DetectEcosystem(raw))
}

// ParseAs extracts packages from raw for a known ecosystem, skipping
// detection. Callers use this when the ecosystem was chosen explicitly.
func ParseAs(raw string, eco scan.Ecosystem) []scan.ParsedPackage {
	switch eco {
	case scan.EcosystemNPM:
		return parsePackageJSON(raw)
	case scan.EcosystemPyPI:
		return parseRequirements(raw)
	case scan.EcosystemRubyGems:
		return parseGemfile(raw)
	case scan.EcosystemGo:
		return parseGoMod(raw)
	case scan.EcosystemCargo:
		return parseCargoTOML(raw)
	default:
		return parsePackageJSON(raw)
	}
}

// stripRangeOperators removes leading version-range characters (^, ~, >=,
// <, =) and surrounding whitespace from a version constraint.
func stripRangeOperators(version string) string {
	return strings.TrimSpace(strings.TrimLeft(version, "^~><= "))
}
