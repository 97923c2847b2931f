package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

// Requires a live server: IPSTRATEGY_TEST_REDIS_URL=redis://localhost:6379/15
func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	url := os.Getenv("IPSTRATEGY_TEST_REDIS_URL")
	if url == "" {
		t.Skip("IPSTRATEGY_TEST_REDIS_URL not set")
	}
	c, err := New(context.Background(), url, ttl)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = c.Purge(context.Background())
		_ = c.Close()
	})
	return c
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, time.Hour)

	entry := models.CacheEntry{Key: "k1", Value: models.Strategy{Text: "doc", Backend: "remote"}, CreatedAt: time.Now().UTC()}
	if err := c.Put(ctx, entry); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get(ctx, "k1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Value.Text != "doc" {
		t.Errorf("unexpected value: %q", got.Value.Text)
	}

	n, err := c.Len(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, 50*time.Millisecond)

	_ = c.Put(ctx, models.CacheEntry{Key: "k", CreatedAt: time.Now().UTC()})
	time.Sleep(150 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected miss after expiry")
	}
}
