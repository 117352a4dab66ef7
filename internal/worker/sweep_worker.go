package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/bugtracker/internal/service"
)

// SweepWorker drives the lifecycle sweep on a fixed schedule. One run
// fires immediately at startup to catch tickets that went stale while
// the service was down, then the ticker takes over.
type SweepWorker struct {
	sweeper    *service.SweepService
	thresholds service.SweepThresholds
	interval   time.Duration
	logger     *zap.Logger
}

// NewSweepWorker constructs the worker.
func NewSweepWorker(sweeper *service.SweepService, thresholds service.SweepThresholds, interval time.Duration, logger *zap.Logger) *SweepWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweepWorker{
		sweeper:    sweeper,
		thresholds: thresholds,
		interval:   interval,
		logger:     logger,
	}
}

// Start launches the sweep loop in its own goroutine. It stops when ctx
// is cancelled. Run failures are logged and the schedule continues.
func (w *SweepWorker) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *SweepWorker) loop(ctx context.Context) {
	w.logger.Info("sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("resolve_after", w.thresholds.Resolve),
		zap.Duration("close_after", w.thresholds.Close),
	)

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sweep worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SweepWorker) runOnce(ctx context.Context) {
	summary, err := w.sweeper.Run(ctx, w.thresholds)
	if err != nil {
		w.logger.Error("scheduled sweep failed", zap.Error(err))
		return
	}
	if summary.Total() > 0 {
		w.logger.Info("scheduled sweep completed",
			zap.String("run_id", summary.RunID),
			zap.Int("resolved", len(summary.Resolved)),
			zap.Int("closed", len(summary.Closed)),
		)
	}
}
