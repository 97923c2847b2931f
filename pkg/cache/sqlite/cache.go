package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

// Cache is a time-bounded strategy cache backed by SQLite. It lets several
// local processes share generated strategies; rows past their TTL are never
// returned and can be dropped with PurgeExpired.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS strategy_cache (
	cache_key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	created_at DATETIME NOT NULL,
	ttl_ms INTEGER NOT NULL
);
`

// New creates a Cache with the given database path and TTL.
func New(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// Get retrieves a cached entry. Expired rows are reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) (models.CacheEntry, bool, error) {
	var value []byte
	var createdAt time.Time
	var ttlMs int64

	err := c.db.QueryRowContext(ctx,
		`SELECT value, created_at, ttl_ms FROM strategy_cache WHERE cache_key = ?`,
		key,
	).Scan(&value, &createdAt, &ttlMs)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CacheEntry{}, false, nil
	}
	if err != nil {
		return models.CacheEntry{}, false, fmt.Errorf("cache get: %w", err)
	}

	if time.Since(createdAt) >= time.Duration(ttlMs)*time.Millisecond {
		return models.CacheEntry{}, false, nil
	}

	var strategy models.Strategy
	if err := json.Unmarshal(value, &strategy); err != nil {
		return models.CacheEntry{}, false, fmt.Errorf("decode cached strategy: %w", err)
	}
	return models.CacheEntry{Key: key, Value: strategy, CreatedAt: createdAt}, true, nil
}

// Put stores an entry, superseding any previous row for the key.
func (c *Cache) Put(ctx context.Context, entry models.CacheEntry) error {
	value, err := json.Marshal(entry.Value)
	if err != nil {
		return fmt.Errorf("encode strategy: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO strategy_cache (cache_key, value, created_at, ttl_ms)
		 VALUES (?, ?, ?, ?)`,
		entry.Key, value, entry.CreatedAt.UTC(), c.ttl.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Len returns the number of stored rows, expired or not.
func (c *Cache) Len(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM strategy_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return count, nil
}

// Purge removes all entries.
func (c *Cache) Purge(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM strategy_cache`); err != nil {
		return fmt.Errorf("cache purge: %w", err)
	}
	return nil
}

// PurgeExpired removes only entries older than their TTL.
func (c *Cache) PurgeExpired(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM strategy_cache WHERE (julianday('now') - julianday(created_at)) * 86400000 >= ttl_ms`)
	if err != nil {
		return fmt.Errorf("cache purge expired: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
