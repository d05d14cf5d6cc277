package cli

import (
	"fmt"
	"sort"

	"github.com/driftwatch/deadscan/pkg/scan"
)

// printReport renders a scan result as a styled terminal report:
// summary first, then packages ordered by descending risk.
func printReport(result scan.ScanResult) {
	printNewline()
	fmt.Println(StyleTitle.Render("Deadware Risk Report"))
	printDetail("scan %s · %s · %s", result.ID, result.Ecosystem, result.CreatedAt.Format("2006-01-02 15:04 MST"))
	printNewline()

	printSummary(result.Summary)
	printNewline()

	packages := make([]scan.PackageAnalysis, len(result.Packages))
	copy(packages, result.Packages)
	sort.SliceStable(packages, func(i, j int) bool {
		return packages[i].Risk.Overall > packages[j].Risk.Overall
	})

	for _, pkg := range packages {
		printPackage(pkg)
	}

	if result.Summary.Critical+result.Summary.High > 0 {
		printNextStep("Export full details", "deadscan scan <manifest> -o report.json")
	}
}

func printSummary(s scan.ScanSummary) {
	printKeyValue("Packages", fmt.Sprintf("%d", s.TotalPackages))
	printKeyValue("Health score", fmt.Sprintf("%d/100", s.OverallHealthScore))

	line := fmt.Sprintf("%s %d  %s %d  %s %d  %s %d  %s %d",
		renderLevel(scan.RiskCritical), s.Critical,
		renderLevel(scan.RiskHigh), s.High,
		renderLevel(scan.RiskMedium), s.Medium,
		renderLevel(scan.RiskLow), s.Low,
		renderLevel(scan.RiskHealthy), s.Healthy,
	)
	printKeyValue("Risk levels", line)

	if s.TotalVulnerabilities > 0 {
		printKeyValue("Vulnerabilities", fmt.Sprintf("%d", s.TotalVulnerabilities))
	}
	if s.DeprecatedCount > 0 {
		printKeyValue("Deprecated", fmt.Sprintf("%d", s.DeprecatedCount))
	}
}

func printPackage(pkg scan.PackageAnalysis) {
	header := fmt.Sprintf("%s %s  %s  %s",
		StyleValue.Render(pkg.Package.Name),
		StyleDim.Render(pkg.Package.Version),
		StyleNumber.Render(fmt.Sprintf("%d", pkg.Risk.Overall)),
		renderLevel(pkg.Risk.Level),
	)
	fmt.Println(header)

	if pkg.Error != "" {
		printDetail("%s %s", iconWarning, pkg.Error)
	}

	for _, factor := range pkg.Risk.Factors {
		printDetail("%-24s %3d  %s", factor.Name, factor.Score, factor.Description)
	}

	for _, v := range pkg.Signals.Vulnerabilities {
		printDetail("%s %s [%s] %s", iconWarning, v.ID, v.Severity, v.Summary)
	}

	for _, r := range pkg.Replacements {
		suggestion := fmt.Sprintf("consider %s: %s", r.Name, r.Reason)
		fmt.Println("  " + StyleSuccess.Render(iconArrow) + " " + StyleDim.Render(suggestion))
		if r.URL != "" {
			printDetail("  %s", StyleLink.Render(r.URL))
		}
	}

	printNewline()
}
