package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/driftwatch/deadscan/pkg/cache"
	"github.com/driftwatch/deadscan/pkg/integrations"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(cache.NewNullCache(), time.Minute)
	c.baseURL = srv.URL
	return c
}

func TestFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widget", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github.v3+json" {
			t.Errorf("Accept = %q", got)
		}
		w.Write([]byte(`{
			"stargazers_count": 1200,
			"open_issues_count": 42,
			"archived": true,
			"license": {"spdx_id": "MIT"}
		}`))
	})
	mux.HandleFunc("/repos/acme/widget/contents/SECURITY.md", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "SECURITY.md", "path": "SECURITY.md", "type": "file", "size": 10}`))
	})
	c := newTestClient(t, mux)

	got, err := c.Fetch(context.Background(), "acme", "widget", "tok", false)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got.Stars != 1200 || got.OpenIssues != 42 {
		t.Errorf("metrics = %+v", got)
	}
	if !got.Archived {
		t.Error("Archived = false, want true")
	}
	if got.License != "MIT" {
		t.Errorf("License = %q, want MIT", got.License)
	}
	if !got.HasSecurityPolicy {
		t.Error("HasSecurityPolicy = false, want true")
	}
}

func TestFetchNoSecurityPolicy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widget", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none without token", got)
		}
		w.Write([]byte(`{"stargazers_count": 5, "open_issues_count": 1}`))
	})
	// SECURITY.md route absent: mux returns 404.
	c := newTestClient(t, mux)

	got, err := c.Fetch(context.Background(), "acme", "widget", "", false)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got.HasSecurityPolicy {
		t.Error("HasSecurityPolicy = true, want false when SECURITY.md missing")
	}
}

func TestFetchNotFound(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())

	_, err := c.Fetch(context.Background(), "acme", "gone", "", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
}

func TestExtractRepo(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantRepo  string
		wantOK    bool
	}{
		{"https://github.com/acme/widget", "acme", "widget", true},
		{"https://github.com/acme/widget.git", "acme", "widget", true},
		{"https://github.com/acme/widget/tree/main", "acme", "widget", true},
		{"https://github.com/acme/widget?tab=readme", "acme", "widget", true},
		{"http://github.com/acme/widget", "acme", "widget", true},
		{"https://github.com/sponsors/acme", "", "", false},
		{"https://gitlab.com/acme/widget", "", "", false},
		{"not a url", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		owner, repo, ok := ExtractRepo(tt.url)
		if ok != tt.wantOK || owner != tt.wantOwner || repo != tt.wantRepo {
			t.Errorf("ExtractRepo(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.url, owner, repo, ok, tt.wantOwner, tt.wantRepo, tt.wantOK)
		}
	}
}

func TestFetchManifest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/pyapp/contents/requirements.txt", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github.v3.raw" {
			t.Errorf("Accept = %q, want raw media type", got)
		}
		w.Write([]byte("requests==2.31.0\n"))
	})
	c := newTestClient(t, mux)

	got, err := c.FetchManifest(context.Background(), "acme", "pyapp", "")
	if err != nil {
		t.Fatalf("FetchManifest() error = %v", err)
	}
	if got.Name != "requirements.txt" {
		t.Errorf("Name = %q, want requirements.txt", got.Name)
	}
	if got.Content != "requests==2.31.0\n" {
		t.Errorf("Content = %q", got.Content)
	}
}

func TestFetchManifestPrefersPackageJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/app/contents/package.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dependencies": {}}`))
	})
	mux.HandleFunc("/repos/acme/app/contents/go.mod", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("module example.com/app\n"))
	})
	c := newTestClient(t, mux)

	got, err := c.FetchManifest(context.Background(), "acme", "app", "")
	if err != nil {
		t.Fatalf("FetchManifest() error = %v", err)
	}
	if got.Name != "package.json" {
		t.Errorf("Name = %q, want package.json (lookup order)", got.Name)
	}
}

func TestFetchManifestNone(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())

	_, err := c.FetchManifest(context.Background(), "acme", "empty", "")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("FetchManifest() error = %v, want ErrNotFound", err)
	}
}
