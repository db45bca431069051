package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner triggers the cleanup engine on a fixed interval. Each run is
// independent and idempotent, a failed run only logs and waits for the
// next tick.
type Runner struct {
	engine    *Engine
	logger    *zap.Logger
	interval  time.Duration
	retention time.Duration
}

// NewRunner ...
func NewRunner(engine *Engine, logger *zap.Logger, interval time.Duration, retention time.Duration) *Runner {
	return &Runner{
		engine:    engine,
		logger:    logger,
		interval:  interval,
		retention: retention,
	}
}

// Run blocks until ctx is cancelled
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes one cleanup pass: draft expiry, then log pruning.
// A prune failure is a warning and never aborts the pass.
func (r *Runner) RunOnce(ctx context.Context) {
	result, err := r.engine.ExpireDraftCampaigns(ctx, time.Now())
	if err != nil {
		r.logger.Error("expire draft campaigns failed", zap.Error(err))
	} else if len(result.Deleted) > 0 || result.Errors > 0 {
		r.logger.Info("expired draft campaigns",
			zap.Int("deleted", len(result.Deleted)),
			zap.Int("errors", result.Errors),
		)
	}

	removed, err := r.engine.PruneOldLogs(ctx, r.retention)
	if err != nil {
		r.logger.Warn("pruning old logs failed", zap.Error(err))
		return
	}
	if removed > 0 {
		r.logger.Info("pruned old cleanup logs", zap.Int64("removed", removed))
	}
}
