// Package scheduler drives repeated aggregation runs on an interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"fdescout/internal/model"
)

// Runner is one aggregation run. Implemented by aggregator.Aggregator.
type Runner interface {
	Run(ctx context.Context, q model.SearchQuery) (*model.RunSummary, error)
}

// Scheduler owns the watch loop: one immediate run, then a run per
// tick until the context is cancelled.
type Scheduler struct {
	runner   Runner
	query    model.SearchQuery
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler running the given query at the
// given interval.
func NewScheduler(runner Runner, q model.SearchQuery, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		query:    q,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It returns nil when ctx is cancelled (graceful
// shutdown); a failed run is logged and the loop keeps ticking.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting watch loop",
		"interval", s.interval.String(),
		"query", s.query.Query,
	)

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down watch loop")
			return nil
		case <-time.After(s.interval):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	summary, err := s.runner.Run(ctx, s.query)
	if err != nil {
		s.logger.Error("run failed", "error", err)
		return
	}

	s.logger.Info("watch cycle complete",
		"run_id", summary.RunID,
		"found", summary.TotalFound,
		"saved", summary.Saved,
		"skipped", summary.Skipped,
	)
}
