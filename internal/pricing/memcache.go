package pricing

import (
	"context"
	"sync"
	"time"
)

// MemCache is an in-memory TTL implementation of Cache for tests and
// single-node runs. Expired entries are skipped on read and reclaimed by
// Purge, which the composition root runs on its scheduler.
type MemCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memEntry
	now     nowFunc
}

type memEntry struct {
	price     float64
	expiresAt time.Time
}

// NewMemCache creates an in-memory TTL cache.
func NewMemCache(ttl time.Duration) *MemCache {
	return &MemCache{
		ttl:     ttl,
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

// Get returns the cached price and whether a live entry exists.
func (c *MemCache) Get(_ context.Context, key string) (float64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return 0, false, nil
	}
	return e.price, true, nil
}

// Set stores a price under the cache's TTL.
func (c *MemCache) Set(_ context.Context, key string, price float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memEntry{price: price, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Purge removes expired entries and returns how many were dropped.
func (c *MemCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

var _ Cache = (*MemCache)(nil)
