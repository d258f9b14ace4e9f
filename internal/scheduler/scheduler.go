package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Task is one unit of periodic work.
type Task interface {
	Run(ctx context.Context) error
}

// Scheduler runs the search dispatcher and then the backlog processor
// on a fixed interval, starting with an immediate tick. Ticks never
// overlap: a slow pipeline run simply delays the next one.
type Scheduler struct {
	interval   time.Duration
	dispatcher Task
	processor  *Processor
	logger     *slog.Logger
}

func NewScheduler(interval time.Duration, dispatcher Task, processor *Processor, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		interval:   interval,
		dispatcher: dispatcher,
		processor:  processor,
		logger:     logger,
	}
}

// Run blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	started := time.Now()

	if s.dispatcher != nil {
		if err := s.dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			// Quota exhaustion lands here; the processed backlog is
			// still worth working through.
			s.logger.Warn("search dispatch aborted", "error", err)
		}
	}

	if err := s.processor.ProcessBacklog(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("backlog processing failed", "error", err)
	}

	s.logger.Info("scheduler tick complete", "elapsed", time.Since(started).Round(time.Second))
}
