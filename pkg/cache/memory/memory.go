// Package memory implements the strategy cache as a size-bounded in-process LRU.
package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

// DefaultSize is used when New is given a non-positive size.
const DefaultSize = 1024

// Cache is an expiring LRU keyed by profile digest.
type Cache struct {
	lru *expirable.LRU[string, models.CacheEntry]
}

// New creates a Cache holding at most size entries for at most ttl.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache{lru: expirable.NewLRU[string, models.CacheEntry](size, nil, ttl)}
}

func (c *Cache) Get(_ context.Context, key string) (models.CacheEntry, bool, error) {
	e, ok := c.lru.Get(key)
	return e, ok, nil
}

func (c *Cache) Put(_ context.Context, entry models.CacheEntry) error {
	c.lru.Add(entry.Key, entry)
	return nil
}

func (c *Cache) Len(_ context.Context) (int64, error) {
	return int64(c.lru.Len()), nil
}

func (c *Cache) Purge(_ context.Context) error {
	c.lru.Purge()
	return nil
}

func (c *Cache) Close() error { return nil }
