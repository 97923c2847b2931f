// Package backend provides the strategy sources the gateway delegates to on a
// cache miss: a static rule table, a remote text-generation endpoint and an
// OpenAI-compatible chat endpoint, optionally chained as fallbacks.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pario-ai/ipstrategy/pkg/config"
	"github.com/pario-ai/ipstrategy/pkg/models"
)

// Request is what a backend needs to produce a strategy.
type Request struct {
	Profile models.BusinessProfile
	// Prompt is the rendered prompt; the static table ignores it.
	Prompt string
}

// Backend produces a strategy for a profile. Errors are *models.Failure.
type Backend interface {
	Name() string
	Call(ctx context.Context, req Request) (models.Strategy, error)
}

// FromConfig builds the configured backend followed by its fallbacks.
// logger receives fallback warnings; nil means slog.Default().
func FromConfig(cfg *config.Config, logger *slog.Logger) (Backend, error) {
	kinds := append([]string{cfg.Backend.Kind}, cfg.Backend.Fallback...)
	seen := make(map[string]bool, len(kinds))

	var backends []Backend
	for _, kind := range kinds {
		if seen[kind] {
			continue
		}
		seen[kind] = true

		b, err := newKind(kind, cfg)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}
	return NewChain(logger, backends...), nil
}

func newKind(kind string, cfg *config.Config) (Backend, error) {
	switch kind {
	case config.BackendStatic:
		return NewStatic(), nil
	case config.BackendRemote:
		return NewRemote(cfg.Remote, cfg.Backend.Timeout), nil
	case config.BackendChat:
		return NewChat(cfg.Chat, cfg.Backend.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q", kind)
	}
}

func httpTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
