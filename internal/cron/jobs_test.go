package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mosketh/storefront/pkg/logger"
)

type fakeSweeper struct {
	calls int
}

func (f *fakeSweeper) Sweep(context.Context) int {
	f.calls++
	return 3
}

func TestSessionSweepJob(t *testing.T) {
	sweeper := &fakeSweeper{}
	job, err := NewSessionSweepJob(sweeper)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sweeper.calls != 1 || job.Name() != "session-sweep" {
		t.Fatalf("unexpected sweep calls %d", sweeper.calls)
	}
	if _, err := NewSessionSweepJob(nil); err == nil {
		t.Fatal("expected error without session manager")
	}
}

type fakePurger struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakePurger) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 4, nil
}

func newStateRetentionJob(t *testing.T, purger *fakePurger, retention time.Duration) *stateRetentionJob {
	t.Helper()
	jobIface, err := NewStateRetentionJob(StateRetentionJobParams{
		Logger:    logger.Nop(),
		Store:     purger,
		Retention: retention,
	})
	if err != nil {
		t.Fatalf("NewStateRetentionJob: %v", err)
	}
	job, ok := jobIface.(*stateRetentionJob)
	if !ok {
		t.Fatalf("expected stateRetentionJob, got %T", jobIface)
	}
	return job
}

func TestStateRetentionJobUsesCutoff(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	purger := &fakePurger{}
	job := newStateRetentionJob(t, purger, 0)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := now.Add(-defaultStateRetention); !purger.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, purger.cutoff)
	}
	if purger.calls != 1 {
		t.Fatalf("expected one purge, got %d", purger.calls)
	}
}

func TestStateRetentionJobPropagatesError(t *testing.T) {
	job := newStateRetentionJob(t, &fakePurger{err: errors.New("boom")}, time.Hour)
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
