package scraping

import (
	"sync"
)

// Cache is an in-memory store for scraping responses, keyed by
// adaptor-derived keys. It is best-effort deduplication, not a single-flight
// guard: two callers racing on the same key may both hit the remote source
// and both write, last one wins.
//
// A nil value records a definitive "no result" from the source, so repeated
// lookups for an absent issue don't re-query the remote until Clear.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]interface{}
}

func NewCache() *Cache {
	return &Cache{entries: map[string]interface{}{}}
}

// Get returns the cached value for key. The second return reports whether
// the key is present at all; a present key with a nil value is a recorded
// miss.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *Cache) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Clear drops every entry. It is idempotent.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]interface{}{}
}

// Len reports the number of cached entries, including recorded misses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
