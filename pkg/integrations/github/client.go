// Package github enriches package signals with GitHub repository
// metadata and imports manifest files from repositories.
package github

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/driftwatch/deadscan/pkg/cache"
	"github.com/driftwatch/deadscan/pkg/integrations"
)

var repoURLPattern = regexp.MustCompile(`https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:[/?#]|$)`)

// RepoMetrics holds the repository-level signals used for enrichment.
type RepoMetrics struct {
	Owner             string `json:"owner"`
	Repo              string `json:"repo"`
	OpenIssues        int    `json:"openIssues"`
	Stars             int    `json:"stars"`
	Archived          bool   `json:"archived"`
	HasSecurityPolicy bool   `json:"hasSecurityPolicy"`
	License           string `json:"license"`
}

// Client provides access to the GitHub API for repository metadata
// enrichment. Tokens are supplied per request, not at construction, so
// a single client serves callers with different credentials.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client backed by the given cache.
func NewClient(backend cache.Cache, ttl time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	return &Client{
		Client:  integrations.NewClient(backend, "github:", ttl, headers),
		baseURL: "https://api.github.com",
	}
}

// Fetch retrieves repository metrics for enrichment. The token may be
// empty; unauthenticated requests work with lower rate limits.
func (c *Client) Fetch(ctx context.Context, owner, repo, token string, refresh bool) (*RepoMetrics, error) {
	key := owner + "/" + repo

	var m RepoMetrics
	err := c.Cached(ctx, key, refresh, &m, func() error {
		return c.fetchMetrics(ctx, owner, repo, token, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) fetchMetrics(ctx context.Context, owner, repo, token string, m *RepoMetrics) error {
	var data repoResponse
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
	if err := c.GetWithHeaders(ctx, url, authHeaders(token), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
		}
		return err
	}

	*m = RepoMetrics{
		Owner:      owner,
		Repo:       repo,
		OpenIssues: data.OpenIssues,
		Stars:      data.Stars,
		Archived:   data.Archived,
		License:    data.License.SPDXID,
	}
	m.HasSecurityPolicy = c.hasSecurityPolicy(ctx, owner, repo, token)
	return nil
}

// hasSecurityPolicy checks for a SECURITY.md in the repository root.
// Best-effort: any error reads as "no policy".
func (c *Client) hasSecurityPolicy(ctx context.Context, owner, repo, token string) bool {
	var item contentResponse
	url := fmt.Sprintf("%s/repos/%s/%s/contents/SECURITY.md", c.baseURL, owner, repo)
	if err := c.GetWithHeaders(ctx, url, authHeaders(token), &item); err != nil {
		return false
	}
	return item.Name != ""
}

// ExtractRepo parses a repository URL into its owner and repo name.
func ExtractRepo(repoURL string) (owner, repo string, ok bool) {
	return integrations.ExtractRepoURL(repoURLPattern, repoURL)
}

func authHeaders(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

type repoResponse struct {
	Stars      int  `json:"stargazers_count"`
	OpenIssues int  `json:"open_issues_count"`
	Archived   bool `json:"archived"`
	License    struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
}

type contentResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size"`
}
