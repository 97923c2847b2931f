package models

import "time"

// CacheEntry stores a generated strategy under its profile key.
type CacheEntry struct {
	Key       string    `json:"key"`
	Value     Strategy  `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the entry is older than ttl at now.
func (e CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) >= ttl
}

// CacheStats reports cache performance metrics.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
