// Package cache provides pluggable byte caches for HTTP response caching.
//
// Registry responses change slowly, so fetchers cache them aggressively
// behind this interface. Three backends are provided: a file cache for
// CLI usage, a Redis cache for server deployments, and a null cache for
// tests or when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with a TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found
	// and fresh; expired or missing entries are a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
