package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hyperengineering/devtrack/internal/types"
)

// RecurringProcessor books due recurring costs.
type RecurringProcessor interface {
	Process(ctx context.Context) (*types.ProcessResult, error)
}

// RecurringCostWorker periodically processes recurring costs. Processing
// claims each month per cost, so ticks after the first in a month are no-ops.
type RecurringCostWorker struct {
	processor RecurringProcessor
	interval  time.Duration
}

// NewRecurringCostWorker creates a worker that runs processor every interval.
func NewRecurringCostWorker(processor RecurringProcessor, interval time.Duration) *RecurringCostWorker {
	return &RecurringCostWorker{
		processor: processor,
		interval:  interval,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
// Runs once immediately so a restart on the due day still books the month.
func (w *RecurringCostWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "recurring-costs",
		"interval", w.interval.String(),
	)

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "recurring-costs",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *RecurringCostWorker) runOnce(ctx context.Context) {
	start := time.Now()

	result, err := w.processor.Process(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("recurring cycle failed",
			"component", "worker",
			"action", "recurring_failed",
			"error", err,
		)
	}
	if result == nil {
		return
	}

	slog.Debug("recurring cycle completed",
		"component", "worker",
		"action", "recurring_complete",
		"processed", result.Processed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
