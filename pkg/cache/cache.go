// Package cache stores rendered artifacts that are expensive to produce, such
// as Graphviz diagrams of the spatial index.
//
// # Implementations
//
//   - [FileCache]: entries as files under a directory, for the CLI
//   - [MemoryCache]: entries in a map, for a long-running server
//   - [NullCache]: stores nothing, for --no-cache
//
// Keys are built with [Key] from an artifact kind and the inputs that
// determine it, so equal inputs hit the same entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the entry for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources.
	Close() error
}

// GetOrSet returns the entry for key, producing and storing it with fn on a
// miss. Cache read and write failures fall back to fn's result.
func GetOrSet(ctx context.Context, c Cache, key string, ttl time.Duration, fn func() ([]byte, error)) (data []byte, hit bool, err error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, err = fn()
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, data, ttl)
	return data, false, nil
}
