// Package cache defines the strategy cache port and the profile key digest.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

// Store holds generated strategies for a bounded time. Implementations drop
// entries on their own after the TTL they were built with; the gateway still
// checks CreatedAt on every read.
type Store interface {
	// Get returns the entry for key, if present.
	Get(ctx context.Context, key string) (models.CacheEntry, bool, error)
	// Put stores or supersedes the entry under entry.Key.
	Put(ctx context.Context, entry models.CacheEntry) error
	// Len returns the number of stored entries. Drivers that cannot count
	// live entries exactly return an upper bound.
	Len(ctx context.Context) (int64, error)
	// Purge removes every entry.
	Purge(ctx context.Context) error
	// Close releases resources.
	Close() error
}

// Key computes the SHA-256 digest of a profile. Each field is length
// prefixed so that moving bytes between fields changes the key.
func Key(p models.BusinessProfile) string {
	h := sha256.New()
	writeField(h, p.Name)
	writeField(h, string(p.Type))
	writeField(h, p.Description)
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}
