package core

import (
	"context"
	"time"

	"gwi.com/chat-assistant/internal/metrics"
)

// ModelCatalog lists the models the configured provider supports.
type ModelCatalog struct {
	provider Provider
	timeout  time.Duration
}

func NewModelCatalog(provider Provider, timeout time.Duration) *ModelCatalog {
	return &ModelCatalog{provider: provider, timeout: timeout}
}

// ListModels returns the provider's list verbatim. Failures are *UpstreamError.
func (c *ModelCatalog) ListModels(ctx context.Context) ([]string, error) {
	var models []string
	err := callUpstream(ctx, c.provider, "list models", c.timeout, func(ctx context.Context) error {
		var err error
		models, err = c.provider.ListModels(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []string{}
	}
	return models, nil
}

// callUpstream runs fn under the upstream timeout, records latency and wraps
// any failure in an *UpstreamError.
func callUpstream(ctx context.Context, p Provider, op string, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	metrics.UpstreamLatency.WithLabelValues(p.Name(), op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues(p.Name(), op).Inc()
		return &UpstreamError{Provider: p.Name(), Op: op, Err: err}
	}
	return nil
}
