// Package pricing supplies current token prices to the PnL engine's pricing
// overlay. The engine never fetches prices itself; callers assemble a price
// map through a Source and hand it in.
//
// The cache is an explicit, injected abstraction owned by the composition
// root. Cleanup of expired entries is driven by a scheduled task the caller
// controls, never by a hidden background timer.
package pricing

import (
	"context"
	"time"
)

// Cache is a TTL price cache keyed by "<tokenAddress>_<chain>".
type Cache interface {
	// Get returns the cached price and whether a live entry exists.
	Get(ctx context.Context, key string) (float64, bool, error)

	// Set stores a price under the cache's TTL.
	Set(ctx context.Context, key string, price float64) error
}

// Source resolves current prices for a set of token keys. Keys without a
// known price are simply absent from the result; callers must not treat
// absence as zero.
type Source interface {
	Prices(ctx context.Context, keys []string) (map[string]float64, error)
}

// StaticSource is a fixed in-memory Source, used in tests and as the
// default when no external price feed is wired.
type StaticSource map[string]float64

// Prices returns the subset of keys this source knows.
func (s StaticSource) Prices(_ context.Context, keys []string) (map[string]float64, error) {
	out := make(map[string]float64, len(keys))
	for _, k := range keys {
		if p, ok := s[k]; ok {
			out[k] = p
		}
	}
	return out, nil
}

// CachedSource wraps a Source with a Cache, consulting the cache first and
// populating it on misses. Source errors fall back to whatever the cache
// yielded, so a flaky upstream degrades to stale-but-present prices.
type CachedSource struct {
	source Source
	cache  Cache
}

// NewCachedSource creates a cache-backed Source.
func NewCachedSource(source Source, cache Cache) *CachedSource {
	return &CachedSource{source: source, cache: cache}
}

// Prices resolves prices for keys, cache first.
func (c *CachedSource) Prices(ctx context.Context, keys []string) (map[string]float64, error) {
	out := make(map[string]float64, len(keys))
	var misses []string

	for _, k := range keys {
		price, ok, err := c.cache.Get(ctx, k)
		if err == nil && ok {
			out[k] = price
			continue
		}
		misses = append(misses, k)
	}

	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.source.Prices(ctx, misses)
	if err != nil {
		return out, nil
	}
	for k, p := range fetched {
		out[k] = p
		_ = c.cache.Set(ctx, k, p)
	}
	return out, nil
}

var _ Source = (StaticSource)(nil)
var _ Source = (*CachedSource)(nil)

// nowFunc lets tests control time in the in-memory cache.
type nowFunc func() time.Time
