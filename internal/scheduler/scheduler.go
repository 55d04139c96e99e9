package scheduler

import (
	"context"
	"log/slog"
	"time"

	"call_transcriber/internal/domain"
)

// Runner defines the interface for one processing cycle.
type Runner interface {
	RunOnce(ctx context.Context) (*domain.CycleStats, error)
}

// Scheduler executes cycles at a fixed interval. A cycle's failure is
// logged and never stops the loop; shutdown via ctx takes effect at the
// next cycle boundary, letting an in-flight cycle finish.
type Scheduler struct {
	runner       Runner
	interval     time.Duration
	cycleTimeout time.Duration
	logger       *slog.Logger
}

func New(runner Runner, interval, cycleTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:       runner,
		interval:     interval,
		cycleTimeout: cycleTimeout,
		logger:       logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
	defer cancel()

	if _, err := s.runner.RunOnce(cycleCtx); err != nil {
		s.logger.Error("cycle failed", "error", err)
	}
}
