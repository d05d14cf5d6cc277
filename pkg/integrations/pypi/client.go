// Package pypi fetches maintenance signals from the PyPI JSON API.
package pypi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/driftwatch/deadscan/pkg/cache"
	"github.com/driftwatch/deadscan/pkg/integrations"
	"github.com/driftwatch/deadscan/pkg/scan"
)

// Client provides access to the PyPI package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	now     func() time.Time
}

// NewClient creates a PyPI client with the given cache backend.
func NewClient(backend cache.Cache, ttl time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "pypi:", ttl, nil),
		baseURL: "https://pypi.org/pypi",
		now:     time.Now,
	}
}

// repoURLKeys is the priority order for picking a repository URL out of
// PyPI's free-form project_urls table.
var repoURLKeys = []string{"Source", "Source Code", "Repository", "GitHub", "Homepage"}

// FetchSignals retrieves maintenance signals for a Python package.
// The pkg parameter is normalized following PEP 503 (case-insensitive,
// underscores to hyphens).
func (c *Client) FetchSignals(ctx context.Context, pkg string, refresh bool) (scan.MaintenanceSignals, error) {
	pkg = integrations.NormalizePkgName(pkg)

	var signals scan.MaintenanceSignals
	err := c.Cached(ctx, pkg, refresh, &signals, func() error {
		return c.fetch(ctx, pkg, &signals)
	})
	if err != nil {
		return scan.MaintenanceSignals{}, err
	}
	return signals, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, signals *scan.MaintenanceSignals) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	*signals = scan.MaintenanceSignals{}

	if published, ok := latestUploadTime(data.Releases, data.Info.Version); ok {
		days := int(c.now().Sub(published).Hours() / 24)
		signals.LastReleaseDate = &published
		signals.DaysSinceLastRelease = &days
	}

	// PyPI exposes no maintainer roster; a named author counts as one.
	if data.Info.Author != "" || data.Info.Maintainer != "" {
		signals.MaintainerCount = scan.Ptr(1)
	}

	if lic := extractLicenseType(data.Info.License, data.Info.Classifiers); lic != "" {
		signals.License = &lic
	}
	if data.Info.Summary != "" {
		signals.Description = &data.Info.Summary
	}
	if data.Info.HomePage != "" {
		signals.Homepage = &data.Info.HomePage
	}
	if repo := repoURL(data.Info.ProjectURLs); repo != "" {
		signals.Repository = &repo
	}
	if data.Info.Yanked {
		reason := data.Info.YankedReason
		if reason == "" {
			reason = "Release yanked from PyPI"
		}
		signals.Deprecated = &reason
	}

	return nil
}

// latestUploadTime finds the upload time of the first file in the
// current release. PyPI has no top-level publish timestamp.
func latestUploadTime(releases map[string][]releaseFile, version string) (time.Time, bool) {
	files, ok := releases[version]
	if !ok || len(files) == 0 {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, files[0].UploadTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func repoURL(urls map[string]any) string {
	for _, key := range repoURLKeys {
		if s, ok := urls[key].(string); ok && s != "" {
			return integrations.NormalizeRepoURL(s)
		}
	}
	return ""
}

type apiResponse struct {
	Info     apiInfo                  `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type apiInfo struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Summary      string         `json:"summary"`
	License      string         `json:"license"`
	Classifiers  []string       `json:"classifiers"`
	ProjectURLs  map[string]any `json:"project_urls"`
	HomePage     string         `json:"home_page"`
	Author       string         `json:"author"`
	Maintainer   string         `json:"maintainer"`
	Yanked       bool           `json:"yanked"`
	YankedReason string         `json:"yanked_reason"`
}

type releaseFile struct {
	UploadTime string `json:"upload_time_iso_8601"`
}

// extractLicenseType extracts a short license identifier from PyPI data.
// It prefers the classifier (e.g., "License :: OSI Approved :: MIT License" -> "MIT License")
// and falls back to the license field if it's short enough.
func extractLicenseType(license string, classifiers []string) string {
	for _, c := range classifiers {
		if strings.HasPrefix(c, "License :: ") {
			parts := strings.Split(c, " :: ")
			if len(parts) >= 3 {
				return parts[len(parts)-1]
			}
		}
	}

	if license != "" && len(license) < 100 && !strings.Contains(license, "\n") {
		return strings.TrimSpace(license)
	}

	if license != "" {
		firstLine := strings.TrimSpace(strings.Split(license, "\n")[0])
		if len(firstLine) < 50 {
			return firstLine
		}
	}

	return ""
}
