package cache

import (
	"context"
	"sync"

	"denuncias/internal/observability"
)

// QueryCache is an in-memory view cache keyed like a reactive query cache.
// Values replace earlier ones wholesale; nothing is evicted.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewQueryCache returns an empty cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]any)}
}

// Publish stores every view of the snapshot.
func (c *QueryCache) Publish(_ context.Context, views Views) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range views.Entries() {
		c.entries[e.Key.String()] = e.Value
	}
	observability.CachePublishes.WithLabelValues("memory").Inc()
	return nil
}

// Get returns the cached value under key.
func (c *QueryCache) Get(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key.String()]
	return v, ok
}

// Len reports how many keys are cached.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
