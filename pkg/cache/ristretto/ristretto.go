// Package ristretto implements the strategy cache on dgraph-io/ristretto, bounded by
// the total size of cached documents rather than their count.
package ristretto

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

// DefaultMaxCost is used when New is given a non-positive budget.
const DefaultMaxCost = 64 << 20

// Cache wraps a ristretto cache of strategy entries.
type Cache struct {
	c   *ristretto.Cache[string, models.CacheEntry]
	ttl time.Duration
}

// New creates a ristretto-backed cache. maxCostBytes bounds the total size of
// cached strategy text.
func New(maxCostBytes int64, ttl time.Duration) (*Cache, error) {
	if maxCostBytes <= 0 {
		maxCostBytes = DefaultMaxCost
	}
	// ~10x expected items at ~1KB each
	counters := max(maxCostBytes/1000*10, 100)
	c, err := ristretto.NewCache(&ristretto.Config[string, models.CacheEntry]{
		NumCounters: counters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &Cache{c: c, ttl: ttl}, nil
}

func (c *Cache) Get(_ context.Context, key string) (models.CacheEntry, bool, error) {
	e, ok := c.c.Get(key)
	return e, ok, nil
}

// Put stores the entry and waits for the write buffer to drain so the entry
// is visible to the next Get.
func (c *Cache) Put(_ context.Context, entry models.CacheEntry) error {
	if !c.c.SetWithTTL(entry.Key, entry, cost(entry.Value), c.ttl) {
		return fmt.Errorf("ristretto: entry %s dropped", entry.Key)
	}
	c.c.Wait()
	return nil
}

// Len reports keys admitted minus keys evicted by cost. Ristretto does not
// count TTL expiry as an eviction, so entries past their TTL are included
// until Purge; the result is an upper bound on live entries.
func (c *Cache) Len(_ context.Context) (int64, error) {
	m := c.c.Metrics
	if m == nil {
		return 0, nil
	}
	added, evicted := m.KeysAdded(), m.KeysEvicted()
	if evicted > added {
		return 0, nil
	}
	return int64(added - evicted), nil
}

func (c *Cache) Purge(_ context.Context) error {
	c.c.Clear()
	return nil
}

func (c *Cache) Close() error {
	c.c.Close()
	return nil
}

func cost(s models.Strategy) int64 {
	n := len(s.Text) + len(s.Backend)
	for _, r := range s.Recommendations {
		n += len(r)
	}
	if n == 0 {
		n = 1
	}
	return int64(n)
}
