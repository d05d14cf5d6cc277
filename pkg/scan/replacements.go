package scan

// knownReplacements maps known-problematic package names to curated
// alternatives. This is a seed dataset, not derived logic: extend the map
// rather than the lookup. Lookup is by exact name only.
var knownReplacements = map[string][]ReplacementSuggestion{
	// npm
	"request": {
		{Name: "node-fetch", Reason: "Modern, lightweight HTTP client", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/package/node-fetch"},
		{Name: "axios", Reason: "Full-featured HTTP client", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/package/axios"},
		{Name: "undici", Reason: "Official Node.js HTTP/1.1 client", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/package/undici"},
	},
	"moment": {
		{Name: "date-fns", Reason: "Modular, tree-shakable date utility", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/package/date-fns"},
		{Name: "dayjs", Reason: "Tiny Moment.js alternative with same API", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/package/dayjs"},
		{Name: "luxon", Reason: "Modern date library by Moment.js team", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/package/luxon"},
	},
	"underscore": {
		{Name: "lodash", Reason: "More complete utility library", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/package/lodash"},
		{Name: "ramda", Reason: "Functional programming utilities", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/package/ramda"},
	},
	"bower": {
		{Name: "npm", Reason: "Standard Node.js package manager", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/"},
	},
	"tslint": {
		{Name: "eslint", Reason: "TSLint is deprecated in favor of ESLint", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/package/eslint"},
	},
	"node-sass": {
		{Name: "sass", Reason: "Dart Sass - the primary Sass implementation", Ecosystem: EcosystemNPM, URL: "https://www.npmjs.com/package/sass"},
	},
	"left-pad": {
		{Name: "String.prototype.padStart", Reason: "Native JS method - no dependency needed", Ecosystem: EcosystemNPM, URL: "https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Global_Objects/String/padStart"},
	},
	"chalk": {},
	"uuid":  {},

	// Python
	"nose": {
		{Name: "pytest", Reason: "Modern, feature-rich test framework", Ecosystem: EcosystemPyPI, URL: "https://pypi.org/project/pytest/"},
	},
	"optparse": {
		{Name: "argparse", Reason: "Standard library replacement", Ecosystem: EcosystemPyPI, URL: "https://docs.python.org/3/library/argparse.html"},
	},
	"pycrypto": {
		{Name: "pycryptodome", Reason: "Maintained fork with security fixes", Ecosystem: EcosystemPyPI, URL: "https://pypi.org/project/pycryptodome/"},
	},
}

// Replacements returns curated alternatives for pkg. Unknown names yield
// an empty list; there is no fuzzy matching.
func Replacements(pkg ParsedPackage) []ReplacementSuggestion {
	return knownReplacements[pkg.Name]
}
