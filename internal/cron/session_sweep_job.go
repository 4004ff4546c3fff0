package cron

import (
	"context"
	"fmt"
)

type sessionSweeper interface {
	Sweep(ctx context.Context) int
}

// NewSessionSweepJob evicts idle session bundles from memory.
func NewSessionSweepJob(sessions sessionSweeper) (Job, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	return &sessionSweepJob{sessions: sessions}, nil
}

type sessionSweepJob struct {
	sessions sessionSweeper
}

func (j *sessionSweepJob) Name() string { return "session-sweep" }

func (j *sessionSweepJob) Run(ctx context.Context) error {
	j.sessions.Sweep(ctx)
	return nil
}
