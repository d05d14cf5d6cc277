package history

import (
	"context"
	"sort"
	"sync"

	"github.com/driftwatch/deadscan/pkg/scan"
)

// MemoryStore keeps scan results in process memory. Useful for the CLI
// and for tests; results do not survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	scans map[string]scan.ScanResult
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scans: make(map[string]scan.ScanResult)}
}

// Save stores a scan result, replacing any previous result with the same ID.
func (s *MemoryStore) Save(ctx context.Context, result scan.ScanResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans[result.ID] = result
	return nil
}

// Get retrieves a scan by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (scan.ScanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.scans[id]
	if !ok {
		return scan.ScanResult{}, ErrScanNotFound
	}
	return result, nil
}

// List returns stored scans, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]scan.ScanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]scan.ScanResult, 0, len(s.scans))
	for _, r := range s.scans {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Close does nothing.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
