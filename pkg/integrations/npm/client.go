// Package npm fetches maintenance signals from the npm registry.
package npm

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

const (
	registryURL  = "https://registry.npmjs.org"
	downloadsURL = "https://api.npmjs.org/downloads/point/last-week"
)

// Client queries the npm registry for package metadata and weekly
// download counts.
type Client struct {
	*integrations.Client
	baseURL      string
	downloadsURL string
	now          func() time.Time
}

// NewClient creates an npm registry client backed by the given cache.
func NewClient(backend cache.Cache, ttl time.Duration) *Client {
	return &Client{
		Client:       integrations.NewClient(backend, "npm:", ttl, nil),
		baseURL:      registryURL,
		downloadsURL: downloadsURL,
		now:          time.Now,
	}
}

// FetchSignals retrieves maintenance signals for an npm package.
// Download counts are best-effort: a failed downloads lookup leaves
// WeeklyDownloads nil rather than failing the whole fetch.
func (c *Client) FetchSignals(ctx context.Context, pkg string, refresh bool) (scan.MaintenanceSignals, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))

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
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.URLEncode(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	*signals = scan.MaintenanceSignals{}

	if published, ok := releaseTime(data.Time); ok {
		days := int(c.now().Sub(published).Hours() / 24)
		signals.LastReleaseDate = &published
		signals.DaysSinceLastRelease = &days
	}

	if data.Maintainers != nil {
		signals.MaintainerCount = scan.Ptr(len(data.Maintainers))
	}

	// Latest-tagged version metadata wins; sparse version entries fall
	// back to the package-level fields.
	v := data.Versions[data.DistTags.Latest]
	if lic := firstNonEmpty(extractField(v.License, "type"), extractField(data.License, "type")); lic != "" {
		signals.License = &lic
	}
	if desc := firstNonEmpty(v.Description, data.Description); desc != "" {
		signals.Description = &desc
	}
	if home := firstNonEmpty(v.HomePage, data.HomePage); home != "" {
		signals.Homepage = &home
	}
	repoRaw := firstNonEmpty(extractField(v.Repository, "url"), extractField(data.Repository, "url"))
	if repo := integrations.NormalizeRepoURL(repoRaw); repo != "" {
		signals.Repository = &repo
	}
	if v.Deprecated != "" {
		signals.Deprecated = &v.Deprecated
	}

	var downloads downloadsResponse
	if err := c.Get(ctx, c.downloadsURL+"/"+integrations.URLEncode(pkg), &downloads); err == nil {
		signals.WeeklyDownloads = scan.Ptr(downloads.Downloads)
	}

	return nil
}

// releaseTime resolves the most recent publish across all versions. A
// backport published after the latest-tagged release still counts as
// maintenance activity. The time map's "created" and "modified" entries
// are bookkeeping, not releases; "modified" only serves as a fallback
// when no version keys exist.
func releaseTime(times map[string]time.Time) (time.Time, bool) {
	var latest time.Time
	found := false
	for version, t := range times {
		if version == "created" || version == "modified" {
			continue
		}
		if t.After(latest) {
			latest = t
			found = true
		}
	}
	if found {
		return latest, true
	}
	if t, ok := times["modified"]; ok {
		return t, true
	}
	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// extractField handles npm's loose schema where fields like license and
// repository may be either a plain string or an object.
func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

type registryResponse struct {
	Name        string                    `json:"name"`
	DistTags    distTags                  `json:"dist-tags"`
	Versions    map[string]versionDetails `json:"versions"`
	Time        map[string]time.Time      `json:"time"`
	Maintainers []maintainer              `json:"maintainers"`
	Description string                    `json:"description"`
	License     any                       `json:"license"`
	Repository  any                       `json:"repository"`
	HomePage    string                    `json:"homepage"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Description string `json:"description"`
	License     any    `json:"license"`
	Repository  any    `json:"repository"`
	HomePage    string `json:"homepage"`
	Deprecated  string `json:"deprecated"`
}

type maintainer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type downloadsResponse struct {
	Downloads int    `json:"downloads"`
	Package   string `json:"package"`
}
