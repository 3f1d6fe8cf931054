package pricing

import (
	"context"
	"testing"
	"time"
)

func TestMemCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache(time.Minute)

	if err := c.Set(ctx, "TOKEN_solana", 12.5); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	price, ok, err := c.Get(ctx, "TOKEN_solana")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || price != 12.5 {
		t.Errorf("Get = %v/%v, want 12.5/true", price, ok)
	}

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Error("unknown key reported as hit")
	}
}

func TestMemCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache(time.Minute)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	if err := c.Set(ctx, "k", 1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatal("fresh entry reported as miss")
	}

	current = current.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expired entry reported as hit")
	}
}

func TestMemCache_Purge(t *testing.T) {
	ctx := context.Background()
	c := NewMemCache(time.Minute)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set(ctx, "old", 1)
	current = current.Add(2 * time.Minute)
	c.Set(ctx, "fresh", 2)

	if dropped := c.Purge(); dropped != 1 {
		t.Errorf("Purge dropped %d, want 1", dropped)
	}
	if _, ok, _ := c.Get(ctx, "fresh"); !ok {
		t.Error("fresh entry lost to purge")
	}
	if dropped := c.Purge(); dropped != 0 {
		t.Errorf("second Purge dropped %d, want 0", dropped)
	}
}

func TestCachedSource_FillsAndServes(t *testing.T) {
	ctx := context.Background()
	cache := NewMemCache(time.Minute)
	upstream := &countingSource{prices: StaticSource{"a": 1, "b": 2}}
	src := NewCachedSource(upstream, cache)

	got, err := src.Prices(ctx, []string{"a", "b", "unknown"})
	if err != nil {
		t.Fatalf("Prices failed: %v", err)
	}
	if len(got) != 2 || got["a"] != 1 || got["b"] != 2 {
		t.Errorf("Prices = %v, want a:1 b:2", got)
	}
	if upstream.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", upstream.calls)
	}

	// Second resolution is served from the cache.
	got, err = src.Prices(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Prices failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("cached Prices = %v, want both keys", got)
	}
	if upstream.calls != 1 {
		t.Errorf("upstream calls = %d, want still 1", upstream.calls)
	}
}

func TestCachedSource_UpstreamFailureDegrades(t *testing.T) {
	ctx := context.Background()
	cache := NewMemCache(time.Minute)
	upstream := &countingSource{prices: StaticSource{"a": 1}}
	src := NewCachedSource(upstream, cache)

	if _, err := src.Prices(ctx, []string{"a"}); err != nil {
		t.Fatalf("warm-up failed: %v", err)
	}

	upstream.fail = true
	got, err := src.Prices(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("degraded Prices failed: %v", err)
	}
	// The cached key survives; the uncached key is simply absent.
	if got["a"] != 1 {
		t.Errorf("cached price lost: %v", got)
	}
	if _, ok := got["b"]; ok {
		t.Error("unpriced key fabricated under upstream failure")
	}
}

type countingSource struct {
	prices StaticSource
	calls  int
	fail   bool
}

func (s *countingSource) Prices(ctx context.Context, keys []string) (map[string]float64, error) {
	s.calls++
	if s.fail {
		return nil, context.DeadlineExceeded
	}
	return s.prices.Prices(ctx, keys)
}
