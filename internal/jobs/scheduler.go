// Package jobs runs periodic maintenance tasks on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/hotel-booking/internal/metrics"
)

const defaultJobTimeout = time.Minute

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// SessionPruner deletes expired and revoked sessions.
type SessionPruner interface {
	PruneSessions(ctx context.Context) (int64, error)
}

// Scheduler wraps a cron runner whose jobs log failures instead of stopping the process.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// NewScheduler creates a scheduler evaluating specs in UTC.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "jobs")
	cronLog := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithParser(cronParser),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		logger:  logger,
		timeout: defaultJobTimeout,
	}
}

// RegisterSessionPruning runs pruner on the given cron schedule.
func (s *Scheduler) RegisterSessionPruning(schedule string, pruner SessionPruner) error {
	if pruner == nil {
		return fmt.Errorf("jobs: session pruner is nil")
	}
	id, err := s.cron.AddFunc(schedule, func() { s.pruneSessions(pruner) })
	if err != nil {
		return fmt.Errorf("jobs: invalid schedule %q: %w", schedule, err)
	}
	s.logger.Info("session pruning scheduled", "schedule", schedule, "entry_id", int(id))
	return nil
}

func (s *Scheduler) pruneSessions(pruner SessionPruner) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	deleted, err := pruner.PruneSessions(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "session pruning failed", "job", "prune_sessions", "error", err)
		return
	}
	metrics.AddSessionsPruned(deleted)
	s.logger.InfoContext(ctx, "session pruning finished", "job", "prune_sessions", "deleted", deleted)
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries reports the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
