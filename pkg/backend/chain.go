package backend

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

// Chain tries backends in order until one succeeds.
type Chain struct {
	backends []Backend
	logger   *slog.Logger
}

// NewChain returns b[0] unchanged when only one backend is given. A nil
// logger means slog.Default().
func NewChain(logger *slog.Logger, b ...Backend) Backend {
	if len(b) == 1 {
		return b[0]
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{backends: b, logger: logger}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return strings.Join(names, ">")
}

// Call moves on to the next backend after a configuration, network or
// backend failure. A validation failure is returned at once. When every
// backend fails the last failure is returned. An answer from any backend
// but the first is marked Degraded.
func (c *Chain) Call(ctx context.Context, req Request) (models.Strategy, error) {
	if len(c.backends) == 0 {
		return models.Strategy{}, models.Configurationf("no backends configured")
	}

	var lastErr error
	for i, b := range c.backends {
		s, err := b.Call(ctx, req)
		if err == nil {
			if i > 0 {
				s.Degraded = true
			}
			return s, nil
		}
		f := models.AsFailure(err)
		if f.Kind == models.KindValidation {
			return models.Strategy{}, f
		}
		c.logger.Warn("backend failed, trying next", "backend", b.Name(), "kind", f.Kind, "error", f.Message)
		lastErr = f
	}
	return models.Strategy{}, lastErr
}
