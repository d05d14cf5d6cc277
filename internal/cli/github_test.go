package cli

import (
	"testing"

	"github.com/driftwatch/deadscan/pkg/errors"
)

func TestParseRepoArg(t *testing.T) {
	tests := []struct {
		arg       string
		wantOwner string
		wantRepo  string
	}{
		{"acme/widget", "acme", "widget"},
		{"acme/widget/", "acme", "widget"},
		{"https://github.com/acme/widget", "acme", "widget"},
		{"https://github.com/acme/widget.git", "acme", "widget"},
		{"git@github.com:acme/widget.git", "acme", "widget"},
	}
	for _, tt := range tests {
		owner, repo, err := parseRepoArg(tt.arg)
		if err != nil {
			t.Errorf("parseRepoArg(%q) error = %v", tt.arg, err)
			continue
		}
		if owner != tt.wantOwner || repo != tt.wantRepo {
			t.Errorf("parseRepoArg(%q) = (%q, %q), want (%q, %q)",
				tt.arg, owner, repo, tt.wantOwner, tt.wantRepo)
		}
	}
}

func TestParseRepoArgRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"bare name", "widget"},
		{"too many parts", "acme/widget/extra"},
		{"empty owner", "/widget"},
		{"non-http scheme", "ftp://github.com/acme/widget"},
		{"non-github url", "https://gitlab.com/acme/widget"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseRepoArg(tt.arg)
			if err == nil {
				t.Fatalf("parseRepoArg(%q) error = nil, want error", tt.arg)
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("parseRepoArg(%q) error code = %v, want INVALID_INPUT", tt.arg, err)
			}
		})
	}
}
