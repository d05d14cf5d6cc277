package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/driftwatch/deadscan/pkg/integrations"
)

// manifestFiles is the ordered list of dependency manifests looked up
// when importing from a repository root. Order expresses preference
// when a repository carries more than one.
var manifestFiles = []string{
	"package.json",
	"requirements.txt",
	"Gemfile",
	"go.mod",
	"Cargo.toml",
}

// ManifestFile is a dependency manifest fetched from a repository.
type ManifestFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// FetchManifest finds and downloads the first known dependency manifest
// in the repository root. Returns [integrations.ErrNotFound] when the
// repository has none of the known manifest files.
func (c *Client) FetchManifest(ctx context.Context, owner, repo, token string) (*ManifestFile, error) {
	for _, name := range manifestFiles {
		content, err := c.fetchFileRaw(ctx, owner, repo, name, token)
		if errors.Is(err, integrations.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &ManifestFile{Name: name, Content: content}, nil
	}
	return nil, fmt.Errorf("%w: no dependency manifest in %s/%s", integrations.ErrNotFound, owner, repo)
}

// fetchFileRaw downloads a file from the repository's default branch
// using the raw media type, avoiding base64 decoding.
func (c *Client) fetchFileRaw(ctx context.Context, owner, repo, path, token string) (string, error) {
	headers := map[string]string{"Accept": "application/vnd.github.v3.raw"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, path)
	return c.GetText(ctx, url, headers)
}
