// Package gateway memoizes strategy generation: it serves fresh cached
// strategies and otherwise delegates to the configured backend.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/pario-ai/ipstrategy/pkg/backend"
	"github.com/pario-ai/ipstrategy/pkg/cache"
	"github.com/pario-ai/ipstrategy/pkg/cache/memory"
	"github.com/pario-ai/ipstrategy/pkg/models"
	"github.com/pario-ai/ipstrategy/pkg/prompt"
)

// Defaults applied by New.
const (
	DefaultTTL           = time.Hour
	DefaultTimeout       = 30 * time.Second
	DefaultMaxConcurrent = 4
)

// Gateway is the single entry point for strategy generation.
//
// Concurrent requests for the same profile share one in-flight backend call.
// Calls for different profiles run in parallel up to the concurrency limit.
// Only successful results are cached.
type Gateway struct {
	backend backend.Backend
	store   cache.Store
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger

	sem    *semaphore.Weighted
	flight singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTTL sets how long a cached strategy is trusted.
func WithTTL(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.ttl = d
		}
	}
}

// WithTimeout bounds each backend call, including the wait for a free slot.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithMaxConcurrent bounds the number of backend calls in flight.
func WithMaxConcurrent(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithClock replaces time.Now for entry timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// New creates a Gateway. A nil store is replaced by an in-memory LRU.
func New(b backend.Backend, store cache.Store, opts ...Option) *Gateway {
	g := &Gateway{
		backend: b,
		store:   store,
		ttl:     DefaultTTL,
		timeout: DefaultTimeout,
		now:     time.Now,
		logger:  slog.Default(),
		sem:     semaphore.NewWeighted(DefaultMaxConcurrent),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.store == nil {
		g.store = memory.New(memory.DefaultSize, g.ttl)
	}
	return g
}

// Backend returns the name of the configured backend.
func (g *Gateway) Backend() string { return g.backend.Name() }

// TTL returns the cache time-to-live.
func (g *Gateway) TTL() time.Duration { return g.ttl }

// flightResult is shared between callers waiting on the same key.
type flightResult struct {
	strategy models.Strategy
	cached   bool
}

// Generate returns the strategy for p. Any error is a *models.Failure.
// The returned strategy is a private copy and may be modified by the caller.
//
// A request counts as a hit when it is answered from the cache, including
// when another in-flight call for the same key filled it first.
func (g *Gateway) Generate(ctx context.Context, p models.BusinessProfile) (models.Result, error) {
	if err := p.Validate(); err != nil {
		return models.Result{}, err
	}

	key := cache.Key(p)
	if entry, ok := g.lookup(ctx, key); ok {
		g.hits.Add(1)
		g.logger.Debug("strategy cache hit", "profile", p.String(), "key", key[:12])
		return models.Result{Strategy: entry.Value.Clone(), Cached: true}, nil
	}

	// The shared call must not be cancelled by whichever caller started it;
	// it is bounded by the gateway timeout instead.
	shared := context.WithoutCancel(ctx)
	ch := g.flight.DoChan(key, func() (any, error) {
		return g.fill(shared, key, p)
	})

	select {
	case <-ctx.Done():
		g.misses.Add(1)
		return models.Result{}, models.NetworkFailure("request cancelled", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			g.misses.Add(1)
			return models.Result{}, models.AsFailure(res.Err)
		}
		fr := res.Val.(flightResult)
		if fr.cached {
			g.hits.Add(1)
		} else {
			g.misses.Add(1)
		}
		return models.Result{Strategy: fr.strategy.Clone(), Cached: fr.cached}, nil
	}
}

// fill runs once per key at a time. It re-checks the cache, since a flight
// for the same key may have completed between lookup and DoChan.
func (g *Gateway) fill(ctx context.Context, key string, p models.BusinessProfile) (flightResult, error) {
	if entry, ok := g.lookup(ctx, key); ok {
		return flightResult{strategy: entry.Value, cached: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return flightResult{}, models.NetworkFailure("timed out waiting for a free backend slot", err)
	}
	defer g.sem.Release(1)

	start := g.now()
	strategy, err := g.call(ctx, p)
	if err != nil {
		f := models.AsFailure(err)
		g.logger.Warn("strategy generation failed",
			"profile", p.String(), "backend", g.backend.Name(), "kind", f.Kind, "error", f.Message)
		return flightResult{}, f
	}

	// Fallback answers are not cached; the next request retries the primary.
	if !strategy.Degraded {
		entry := models.CacheEntry{Key: key, Value: strategy.Clone(), CreatedAt: g.now()}
		if err := g.store.Put(ctx, entry); err != nil {
			g.logger.Warn("strategy cache write failed", "key", key[:12], "error", err)
		}
	}
	g.logger.Info("strategy generated",
		"profile", p.String(), "backend", strategy.Backend, "degraded", strategy.Degraded,
		"duration", g.now().Sub(start))
	return flightResult{strategy: strategy}, nil
}

// call invokes the backend, converting panics and deadline overruns into failures.
func (g *Gateway) call(ctx context.Context, p models.BusinessProfile) (strategy models.Strategy, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = models.BackendFailure(0, fmt.Sprintf("backend panicked: %v", r), nil)
		}
	}()

	strategy, err = g.backend.Call(ctx, backend.Request{Profile: p, Prompt: prompt.Render(p)})
	if err == nil {
		return strategy, nil
	}

	f := models.AsFailure(err)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && f.Kind != models.KindNetwork {
		return models.Strategy{}, models.NetworkFailure(
			fmt.Sprintf("backend did not answer within %s", g.timeout), err)
	}
	return models.Strategy{}, f
}

// lookup returns a fresh entry. Store errors are logged and treated as a miss.
func (g *Gateway) lookup(ctx context.Context, key string) (models.CacheEntry, bool) {
	entry, ok, err := g.store.Get(ctx, key)
	if err != nil {
		g.logger.Warn("strategy cache read failed", "key", key[:12], "error", err)
		return models.CacheEntry{}, false
	}
	if !ok || entry.Expired(g.now(), g.ttl) {
		return models.CacheEntry{}, false
	}
	return entry, true
}

// Stats returns cache performance metrics.
func (g *Gateway) Stats(ctx context.Context) (models.CacheStats, error) {
	n, err := g.store.Len(ctx)
	if err != nil {
		return models.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return models.CacheStats{
		Entries: n,
		Hits:    g.hits.Load(),
		Misses:  g.misses.Load(),
	}, nil
}

// Purge empties the cache.
func (g *Gateway) Purge(ctx context.Context) error {
	if err := g.store.Purge(ctx); err != nil {
		return fmt.Errorf("cache purge: %w", err)
	}
	return nil
}
