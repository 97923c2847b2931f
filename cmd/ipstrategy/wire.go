package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pario-ai/ipstrategy/pkg/backend"
	"github.com/pario-ai/ipstrategy/pkg/cache"
	"github.com/pario-ai/ipstrategy/pkg/cache/memory"
	"github.com/pario-ai/ipstrategy/pkg/cache/redis"
	"github.com/pario-ai/ipstrategy/pkg/cache/ristretto"
	"github.com/pario-ai/ipstrategy/pkg/cache/sqlite"
	"github.com/pario-ai/ipstrategy/pkg/config"
	"github.com/pario-ai/ipstrategy/pkg/gateway"
)

// newLogger builds the process logger. Logs always go to stderr so that
// stdout stays free for generated documents and the MCP transport.
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// openStore creates the cache store selected by cfg.Cache.Driver.
func openStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	c := cfg.Cache
	switch c.Driver {
	case config.CacheMemory, "":
		return memory.New(c.Size, c.TTL), nil
	case config.CacheRistretto:
		return ristretto.New(c.MaxBytes, c.TTL)
	case config.CacheSQLite:
		return sqlite.New(c.DBPath, c.TTL)
	case config.CacheRedis:
		return redis.New(ctx, c.RedisURL, c.TTL)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", c.Driver)
	}
}

// app bundles everything a command needs to serve requests.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   cache.Store
	gateway *gateway.Gateway
}

func (a *app) Close() error { return a.store.Close() }

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	b, err := backend.FromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init backend: %w", err)
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	gw := gateway.New(b, store,
		gateway.WithTTL(cfg.Cache.TTL),
		gateway.WithTimeout(cfg.Backend.Timeout),
		gateway.WithMaxConcurrent(cfg.Gateway.MaxConcurrent),
		gateway.WithLogger(logger),
	)
	return &app{cfg: cfg, logger: logger, store: store, gateway: gw}, nil
}
