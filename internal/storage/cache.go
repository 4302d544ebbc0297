package storage

import (
	"sync"
	"time"
)

// DefaultCacheMaxAge is how long a parsed collection stays fresh. Reads
// inside the window skip re-parsing the JSON blob.
const DefaultCacheMaxAge = 5 * time.Second

type cacheEntry struct {
	data     any
	storedAt time.Time
}

// Cache is a short-lived read cache keyed by storage key. There is no
// eviction beyond staleness: the key count equals the number of storage
// collections, a handful.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]cacheEntry
	maxAge time.Duration
}

// NewCache creates a cache with the given staleness window; maxAge <= 0
// falls back to DefaultCacheMaxAge.
func NewCache(maxAge time.Duration) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultCacheMaxAge
	}
	return &Cache{
		items:  make(map[string]cacheEntry),
		maxAge: maxAge,
	}
}

// Get returns the cached value for key, or false if absent or stale.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Since(e.storedAt) > c.maxAge {
		c.Invalidate(key)
		return nil, false
	}

	return e.data, true
}

// Set stores data under key, stamped with the current time.
func (c *Cache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheEntry{data: data, storedAt: time.Now()}
}

// Invalidate drops the entry for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]cacheEntry)
}
