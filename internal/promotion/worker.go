package promotion

import (
	"context"
	"log/slog"
	"time"
)

// Worker runs promotion cycles on a fixed interval.
type Worker struct {
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger
}

// NewWorker creates a Worker for engine.
// If interval is <= 0, it defaults to one minute.
func NewWorker(engine *Engine, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{
		engine:   engine,
		interval: interval,
		logger:   slog.Default(),
	}
}

// Run executes a cycle immediately and then once per interval until ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if n := w.RunOnce(ctx); n > 0 {
			w.logger.Info("promotion cycle finished", "promoted", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}

// RunOnce executes a single promotion cycle.
func (w *Worker) RunOnce(ctx context.Context) int {
	return w.engine.RunCycle(ctx)
}
