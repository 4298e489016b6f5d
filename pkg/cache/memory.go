package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps entries in memory. It is safe for concurrent use. When
// full, Set evicts expired entries first and then the oldest one.
type MemoryCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]memEntry
	now     func() time.Time
}

type memEntry struct {
	data      []byte
	stored    time.Time
	expiresAt time.Time
}

// NewMemoryCache creates a cache holding at most max entries. A non-positive
// max means 64.
func NewMemoryCache(max int) *MemoryCache {
	if max <= 0 {
		max = 64
	}
	return &MemoryCache{max: max, entries: make(map[string]memEntry), now: time.Now}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.expired(e) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	e := memEntry{data: data, stored: now}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.max {
		c.evict()
	}
	c.entries[key] = e
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}

func (c *MemoryCache) expired(e memEntry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

func (c *MemoryCache) evict() {
	var oldest string
	var oldestAt time.Time
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			continue
		}
		if oldest == "" || e.stored.Before(oldestAt) {
			oldest, oldestAt = k, e.stored
		}
	}
	if len(c.entries) >= c.max && oldest != "" {
		delete(c.entries, oldest)
	}
}

var _ Cache = (*MemoryCache)(nil)
