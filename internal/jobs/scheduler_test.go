package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type prunerStub struct {
	calls   atomic.Int32
	deleted int64
	err     error
	panics  bool
}

func (p *prunerStub) PruneSessions(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	if p.panics {
		panic("boom")
	}
	return p.deleted, p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RegisterSessionPruning(t *testing.T) {
	t.Parallel()

	t.Run("accepts descriptors and cron expressions", func(t *testing.T) {
		t.Parallel()

		s := NewScheduler(discardLogger())
		for _, schedule := range []string{"@hourly", "*/5 * * * *", "0 30 * * * *"} {
			if err := s.RegisterSessionPruning(schedule, &prunerStub{}); err != nil {
				t.Fatalf("RegisterSessionPruning(%q) failed: %v", schedule, err)
			}
		}
		if s.Entries() != 3 {
			t.Fatalf("expected 3 entries, got %d", s.Entries())
		}
	})

	t.Run("rejects invalid specs and nil pruners", func(t *testing.T) {
		t.Parallel()

		s := NewScheduler(discardLogger())
		if err := s.RegisterSessionPruning("every tuesday", &prunerStub{}); err == nil {
			t.Fatalf("expected error for invalid schedule")
		}
		if err := s.RegisterSessionPruning("@hourly", nil); err == nil {
			t.Fatalf("expected error for nil pruner")
		}
	})
}

func TestScheduler_RunsJobs(t *testing.T) {
	t.Parallel()

	t.Run("failures are logged, not fatal", func(t *testing.T) {
		t.Parallel()

		s := NewScheduler(discardLogger())
		pruner := &prunerStub{err: errors.New("locked")}
		s.pruneSessions(pruner)
		if pruner.calls.Load() != 1 {
			t.Fatalf("expected one call")
		}
	})

	t.Run("fires on schedule and stops cleanly", func(t *testing.T) {
		t.Parallel()

		s := NewScheduler(discardLogger())
		pruner := &prunerStub{deleted: 2}
		if err := s.RegisterSessionPruning("@every 1s", pruner); err != nil {
			t.Fatalf("RegisterSessionPruning failed: %v", err)
		}
		s.Start()

		deadline := time.Now().Add(5 * time.Second)
		for pruner.calls.Load() == 0 && time.Now().Before(deadline) {
			time.Sleep(50 * time.Millisecond)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Stop(ctx); err != nil {
			t.Fatalf("Stop failed: %v", err)
		}
		if pruner.calls.Load() == 0 {
			t.Fatalf("expected the job to run at least once")
		}
	})

	t.Run("panics are recovered", func(t *testing.T) {
		t.Parallel()

		s := NewScheduler(discardLogger())
		pruner := &prunerStub{panics: true}
		if err := s.RegisterSessionPruning("@every 1s", pruner); err != nil {
			t.Fatalf("RegisterSessionPruning failed: %v", err)
		}
		s.Start()

		deadline := time.Now().Add(5 * time.Second)
		for pruner.calls.Load() == 0 && time.Now().Before(deadline) {
			time.Sleep(50 * time.Millisecond)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Stop(ctx); err != nil {
			t.Fatalf("Stop failed: %v", err)
		}
		if pruner.calls.Load() == 0 {
			t.Fatalf("expected the job to run")
		}
	})
}
