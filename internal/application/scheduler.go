package application

import (
	"context"
	"log/slog"
	"time"
)

// BatchRunner runs one collection batch.
type BatchRunner interface {
	Run(ctx context.Context) (Catalog, error)
}

// Scheduler re-runs collection batches on an interval and on demand.
// Batches never overlap.
type Scheduler struct {
	runner   BatchRunner
	interval time.Duration
	trigger  chan struct{}
	logger   *slog.Logger
}

// NewScheduler creates a new Scheduler. A zero interval disables periodic
// runs; batches then start only through Trigger.
func NewScheduler(runner BatchRunner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		logger:   logger,
	}
}

// Trigger queues a batch. It returns false if one is already queued.
func (s *Scheduler) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run starts a batch immediately, then keeps scheduling until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.runOnce(ctx)

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			s.runOnce(ctx)
		case <-s.trigger:
			s.logger.Info("manual collection batch requested")
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	// Failures are logged and published by the runner itself.
	_, _ = s.runner.Run(ctx)
}
