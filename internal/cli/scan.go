package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftwatch/deadscan/internal/config"
	"github.com/driftwatch/deadscan/pkg/errors"
	"github.com/driftwatch/deadscan/pkg/manifest"
	"github.com/driftwatch/deadscan/pkg/scan"
)

// scanOpts holds the command-line flags for the scan command.
type scanOpts struct {
	ecosystem string // force a specific ecosystem instead of auto-detecting
	refresh   bool   // bypass HTTP response cache
	output    string // JSON output file path (report to terminal if empty)
	jsonOut   bool   // print JSON to stdout instead of the terminal report
	save      bool   // persist the result to the history store
}

// newScanCmd creates the scan command for analyzing a local manifest.
//
// Examples:
//
//	deadscan scan package.json
//	deadscan scan requirements.txt --refresh
//	deadscan scan Gemfile --ecosystem rubygems -o report.json
func newScanCmd() *cobra.Command {
	opts := scanOpts{save: true}

	cmd := &cobra.Command{
		Use:   "scan <manifest-file>",
		Short: "Analyze a dependency manifest for deadware risk",
		Long: `Analyze a dependency manifest for deadware risk.

The ecosystem is auto-detected from the file content (package.json,
requirements.txt, Gemfile, go.mod, Cargo.toml). Each package is scored
0-100 from registry signals, known vulnerabilities, and (with a GitHub
token) repository health.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runScan(c.Context(), &opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.ecosystem, "ecosystem", "e", "", "force ecosystem (npm, pypi, rubygems, go, cargo)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the registry response cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write full scan result as JSON to file")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print scan result as JSON to stdout")
	cmd.Flags().BoolVar(&opts.save, "save", opts.save, "persist the scan to the history store")

	return cmd
}

func runScan(ctx context.Context, opts *scanOpts, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read manifest %s", path)
	}
	return scanManifest(ctx, opts, string(raw))
}

// scanManifest runs the full pipeline on raw manifest text: detect,
// parse, analyze, report, persist.
func scanManifest(ctx context.Context, opts *scanOpts, raw string) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	eco, packages, err := parseInput(opts.ecosystem, raw)
	if err != nil {
		return err
	}
	if len(packages) == 0 {
		return errors.New(errors.ErrCodeInvalidManifest, "no packages found in manifest")
	}
	logger.Debugf("Detected %s manifest with %d packages", eco, len(packages))

	backend, err := buildCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	if cfg.GitHubToken == "" {
		logger.Debug("No GitHub token configured, skipping repository enrichment")
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %d packages...", len(packages)))
	spinner.Start()

	prog := newProgress(logger)
	analyses, err := buildAnalyzer(backend).AnalyzeDependencies(ctx, packages, scan.Options{
		BatchSize:  cfg.BatchSize,
		Credential: cfg.GitHubToken,
		Refresh:    opts.refresh,
		OnProgress: func(completed, total int) {
			spinner.SetMessage(fmt.Sprintf("Analyzed %d/%d packages...", completed, total))
		},
		Logger: func(msg string, args ...any) { logger.Warnf(msg, args...) },
	})
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			printWarning("Scan cancelled")
		}
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %d packages", len(analyses)))

	result := scan.NewScanResult(analyses, eco, raw)

	if opts.save && cfg.MongoURL != "" {
		if store, err := buildStore(ctx, cfg); err != nil {
			logger.Warnf("History store unavailable: %v", err)
		} else {
			defer store.Close(ctx)
			if err := store.Save(ctx, result); err != nil {
				logger.Warnf("Failed to save scan: %v", err)
			} else {
				logger.Debugf("Saved scan %s", result.ID)
			}
		}
	}

	return emitResult(result, opts)
}

// parseInput resolves the ecosystem (forced or detected) and extracts
// packages from the raw manifest.
func parseInput(forced, raw string) (scan.Ecosystem, []scan.ParsedPackage, error) {
	if forced != "" {
		eco := scan.Ecosystem(forced)
		if !eco.Valid() {
			return "", nil, errors.New(errors.ErrCodeInvalidEcosystem, "unknown ecosystem %q", forced)
		}
		return eco, manifest.ParseAs(raw, eco), nil
	}
	eco := manifest.DetectEcosystem(raw)
	return eco, manifest.ParseAs(raw, eco), nil
}

// emitResult writes the scan result in the requested form: JSON file,
// JSON stdout, or styled terminal report.
func emitResult(result scan.ScanResult, opts *scanOpts) error {
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := writeJSON(f, result); err != nil {
			return err
		}
		printSuccess("Scan complete")
		printFile(opts.output)
		return nil
	}

	if opts.jsonOut {
		return writeJSON(os.Stdout, result)
	}

	printReport(result)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
