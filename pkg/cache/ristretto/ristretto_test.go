package ristretto

import (
	"context"
	"testing"
	"time"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(1<<20, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	entry := models.CacheEntry{
		Key:       "k1",
		Value:     models.Strategy{Text: "doc", Recommendations: []string{"a", "b"}, Backend: "static"},
		CreatedAt: time.Now(),
	}
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
	if got.Value.Text != "doc" || len(got.Value.Recommendations) != 2 {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	_ = c.Put(ctx, models.CacheEntry{Key: "k1", Value: models.Strategy{Text: "doc"}, CreatedAt: time.Now()})
	if err := c.Purge(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "k1"); ok {
		t.Error("expected miss after purge")
	}
}

func TestCost(t *testing.T) {
	if cost(models.Strategy{}) != 1 {
		t.Error("empty strategy should cost 1")
	}
	if got := cost(models.Strategy{Text: "abc", Recommendations: []string{"de"}}); got != 5 {
		t.Errorf("expected cost 5, got %d", got)
	}
}

func TestLenCountsAdmittedEntries(t *testing.T) {
	ctx := context.Background()
	c, err := New(1<<20, 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })

	for _, k := range []string{"k1", "k2"} {
		if err := c.Put(ctx, models.CacheEntry{Key: k, Value: models.Strategy{Text: "doc"}, CreatedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := c.Len(ctx); n != 2 {
		t.Fatalf("expected 2 admitted entries, got %d", n)
	}

	time.Sleep(50 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "k1"); ok {
		t.Error("expected miss after TTL")
	}
	if n, _ := c.Len(ctx); n > 2 {
		t.Errorf("Len must stay an upper bound, got %d", n)
	}

	if err := c.Purge(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.Len(ctx); n != 0 {
		t.Errorf("expected 0 after purge, got %d", n)
	}
}
