package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"botdl/internal/entity"
	"botdl/internal/errs"
	"botdl/internal/observability"
)

// Chain runs strategies in strict priority order until one succeeds.
type Chain struct {
	log     *slog.Logger
	metrics *observability.Metrics
}

// NewChain creates a Chain. metrics may be nil.
func NewChain(log *slog.Logger, metrics *observability.Metrics) *Chain {
	return &Chain{
		log:     log.With(slog.String("package", "extractor")),
		metrics: metrics,
	}
}

// Run tries each strategy in order and returns the first successful
// extraction. A retryable failure advances to the next strategy, a terminal
// failure stops immediately, and exhausting the list fails with the last
// error. At most one strategy runs at a time.
func (c *Chain) Run(ctx context.Context,
	strategies []Strategy,
	req *entity.Request,
	onProgress ProgressFunc) (*entity.Extraction, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrNoStrategies, req.Platform)
	}

	var lastErr error

	for i, strat := range strategies {
		log := c.log.With(slog.String("strategy", strat.Name()), "request", req)

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ext, err := strat.Extract(ctx, req, onProgress)
		if err == nil {
			c.metrics.RecordStrategyOutcome(strat.Name(), "success")
			log.Info("extraction succeeded", "extraction", ext)

			return ext, nil
		}

		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		if !errs.IsRetryable(err) {
			c.metrics.RecordStrategyOutcome(strat.Name(), "terminal")
			log.Error("extraction failed", "error", err)

			return nil, err
		}

		c.metrics.RecordStrategyOutcome(strat.Name(), "retryable")

		if i < len(strategies)-1 {
			c.metrics.RecordFallbackAdvance()
			log.Warn("strategy failed, falling back", "error", err)
		}
	}

	return nil, fmt.Errorf("all strategies failed: %w", lastErr)
}
