package pipeline

import (
	"slices"
	"sync"

	"github.com/mgpai22/reelsubs/internal/subtitle"
)

// Cache is the process-wide memory tier. Entries live until Invalidate or
// process exit; there is no eviction.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]subtitle.Segment
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string][]subtitle.Segment)}
}

func cacheKey(namespace, key string) string {
	return namespace + "/" + key
}

func (c *Cache) Get(namespace, key string) ([]subtitle.Segment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	segments, ok := c.entries[cacheKey(namespace, key)]
	if !ok {
		return nil, false
	}
	return slices.Clone(segments), true
}

func (c *Cache) Set(namespace, key string, segments []subtitle.Segment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(namespace, key)] = slices.Clone(segments)
}

func (c *Cache) Invalidate(namespace, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(namespace, key))
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
