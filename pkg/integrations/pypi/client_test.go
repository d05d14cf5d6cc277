package pypi

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

const projectDoc = `{
	"info": {
		"name": "requests",
		"version": "2.31.0",
		"summary": "Python HTTP for Humans.",
		"license": "Apache 2.0",
		"classifiers": [
			"Development Status :: 5 - Production/Stable",
			"License :: OSI Approved :: Apache Software License"
		],
		"project_urls": {
			"Homepage": "https://requests.readthedocs.io",
			"Source": "https://github.com/psf/requests"
		},
		"home_page": "https://requests.readthedocs.io",
		"author": "Kenneth Reitz"
	},
	"releases": {
		"2.31.0": [
			{"upload_time_iso_8601": "2023-05-22T15:12:42.313790Z"}
		]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(cache.NewNullCache(), time.Minute)
	c.baseURL = srv.URL
	c.now = func() time.Time { return time.Date(2024, 5, 22, 16, 0, 0, 0, time.UTC) }
	return c
}

func TestFetchSignals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/requests/json" {
			t.Errorf("path = %s, want /requests/json", r.URL.Path)
		}
		w.Write([]byte(projectDoc))
	})

	got, err := c.FetchSignals(context.Background(), "requests", false)
	if err != nil {
		t.Fatalf("FetchSignals() error = %v", err)
	}

	// 2023-05-22 to 2024-05-22 is 366 days (2024 is a leap year).
	if got.DaysSinceLastRelease == nil || *got.DaysSinceLastRelease != 366 {
		t.Errorf("DaysSinceLastRelease = %v, want 366", got.DaysSinceLastRelease)
	}
	if got.MaintainerCount == nil || *got.MaintainerCount != 1 {
		t.Errorf("MaintainerCount = %v, want 1 (named author)", got.MaintainerCount)
	}
	if got.License == nil || *got.License != "Apache Software License" {
		t.Errorf("License = %v, want classifier value", got.License)
	}
	if got.Repository == nil || *got.Repository != "https://github.com/psf/requests" {
		t.Errorf("Repository = %v", got.Repository)
	}
	if got.Deprecated != nil {
		t.Errorf("Deprecated = %v, want nil", got.Deprecated)
	}
}

func TestFetchSignalsNormalizesName(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"info": {"version": "1.0"}, "releases": {}}`))
	})

	if _, err := c.FetchSignals(context.Background(), "Python_Dateutil", false); err != nil {
		t.Fatalf("FetchSignals() error = %v", err)
	}
	if gotPath != "/python-dateutil/json" {
		t.Errorf("path = %q, want PEP 503 normalized name", gotPath)
	}
}

func TestFetchSignalsYanked(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"info": {"version": "1.0", "yanked": true, "yanked_reason": "broken wheel"},
			"releases": {}
		}`))
	})

	got, err := c.FetchSignals(context.Background(), "broken", false)
	if err != nil {
		t.Fatalf("FetchSignals() error = %v", err)
	}
	if got.Deprecated == nil || *got.Deprecated != "broken wheel" {
		t.Errorf("Deprecated = %v, want yank reason", got.Deprecated)
	}
	if got.DaysSinceLastRelease != nil {
		t.Errorf("DaysSinceLastRelease = %v, want nil without releases", got.DaysSinceLastRelease)
	}
}

func TestFetchSignalsYankedWithoutReason(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info": {"version": "1.0", "yanked": true}, "releases": {}}`))
	})

	got, err := c.FetchSignals(context.Background(), "broken", false)
	if err != nil {
		t.Fatalf("FetchSignals() error = %v", err)
	}
	if got.Deprecated == nil || *got.Deprecated != "Release yanked from PyPI" {
		t.Errorf("Deprecated = %v, want default yank message", got.Deprecated)
	}
}

func TestFetchSignalsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.FetchSignals(context.Background(), "no-such-pkg", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("FetchSignals() error = %v, want ErrNotFound", err)
	}
}

func TestExtractLicenseType(t *testing.T) {
	tests := []struct {
		name        string
		license     string
		classifiers []string
		want        string
	}{
		{
			name:        "classifier preferred",
			license:     "some long rambling license text",
			classifiers: []string{"License :: OSI Approved :: MIT License"},
			want:        "MIT License",
		},
		{
			name:    "short license field",
			license: "BSD-3-Clause",
			want:    "BSD-3-Clause",
		},
		{
			name:    "multiline license uses first line",
			license: "MIT\n\nPermission is hereby granted, free of charge...",
			want:    "MIT",
		},
		{
			name: "nothing known",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractLicenseType(tt.license, tt.classifiers); got != tt.want {
				t.Errorf("extractLicenseType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRepoURLPriority(t *testing.T) {
	urls := map[string]any{
		"Homepage": "https://example.com",
		"Source":   "git+https://github.com/acme/widget.git",
	}
	if got := repoURL(urls); got != "https://github.com/acme/widget" {
		t.Errorf("repoURL() = %q, want Source over Homepage", got)
	}

	if got := repoURL(map[string]any{"Homepage": "https://example.com"}); got != "https://example.com" {
		t.Errorf("repoURL() = %q, want Homepage fallback", got)
	}

	if got := repoURL(nil); got != "" {
		t.Errorf("repoURL(nil) = %q, want empty", got)
	}
}
