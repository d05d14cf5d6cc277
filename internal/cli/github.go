package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driftwatch/deadscan/internal/config"
	"github.com/driftwatch/deadscan/pkg/errors"
	"github.com/driftwatch/deadscan/pkg/integrations"
	"github.com/driftwatch/deadscan/pkg/integrations/github"
	"github.com/driftwatch/deadscan/pkg/signals"
)

// newGitHubCmd creates the github command for scanning a repository's
// manifest without cloning it.
//
// Examples:
//
//	deadscan github expressjs/express
//	deadscan github rails/rails --json
func newGitHubCmd() *cobra.Command {
	opts := scanOpts{save: true}

	cmd := &cobra.Command{
		Use:   "github <owner/repo>",
		Short: "Import and scan a dependency manifest from a GitHub repository",
		Long: `Import and scan a dependency manifest from a GitHub repository.

The repository root is searched for a known manifest (package.json,
requirements.txt, Gemfile, go.mod, Cargo.toml); the first match is
downloaded and analyzed like a local file. Private repositories require
a GitHub token in the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runGitHubScan(c.Context(), &opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.ecosystem, "ecosystem", "e", "", "force ecosystem (npm, pypi, rubygems, go, cargo)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the registry response cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write full scan result as JSON to file")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print scan result as JSON to stdout")
	cmd.Flags().BoolVar(&opts.save, "save", opts.save, "persist the scan to the history store")

	return cmd
}

func runGitHubScan(ctx context.Context, opts *scanOpts, repoArg string) error {
	owner, repo, err := parseRepoArg(repoArg)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	backend, err := buildCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	spinner := newSpinnerWithContext(ctx, "Looking for a manifest in "+owner+"/"+repo+"...")
	spinner.Start()
	mf, err := github.NewClient(backend, signals.DefaultTTL).FetchManifest(ctx, owner, repo, cfg.GitHubToken)
	if err != nil {
		spinner.StopWithError("No dependency manifest found in " + owner + "/" + repo)
		return err
	}
	if err := errors.ValidateManifestFilename(mf.Name); err != nil {
		spinner.Stop()
		return err
	}
	spinner.StopWithSuccess("Found " + mf.Name + " in " + owner + "/" + repo)

	return scanManifest(ctx, opts, mf.Content)
}

// parseRepoArg resolves "owner/repo", a full GitHub URL, or a git remote
// form into its parts. URL forms must use an http(s) scheme.
func parseRepoArg(arg string) (owner, repo string, err error) {
	if strings.Contains(arg, "://") || strings.HasPrefix(arg, "git@") {
		normalized := integrations.NormalizeRepoURL(arg)
		if err := errors.ValidateURL(normalized); err != nil {
			return "", "", err
		}
		if owner, repo, ok := github.ExtractRepo(normalized); ok {
			return owner, repo, nil
		}
		return "", "", errors.New(errors.ErrCodeInvalidInput, "expected a GitHub repository URL, got %q", arg)
	}
	parts := strings.Split(strings.Trim(arg, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "expected <owner/repo>, got %q", arg)
	}
	return parts[0], parts[1], nil
}
