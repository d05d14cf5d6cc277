// Package history persists completed scan results for later retrieval.
package history

import (
	"context"

	"github.com/driftwatch/deadscan/pkg/errors"
	"github.com/driftwatch/deadscan/pkg/scan"
)

// ErrScanNotFound is returned when a scan ID has no stored result.
var ErrScanNotFound = errors.New(errors.ErrCodeScanNotFound, "scan not found")

// Store persists scan results. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save stores a completed scan result.
	Save(ctx context.Context, result scan.ScanResult) error

	// Get retrieves a scan by ID. Returns ErrScanNotFound if absent.
	Get(ctx context.Context, id string) (scan.ScanResult, error)

	// List returns the most recent scans, newest first, up to limit.
	List(ctx context.Context, limit int) ([]scan.ScanResult, error)

	// Close releases the store's resources.
	Close(ctx context.Context) error
}
