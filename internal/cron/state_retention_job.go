package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/mosketh/storefront/pkg/logger"
)

const defaultStateRetention = 30 * 24 * time.Hour

type statePurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StateRetentionJobParams configures pruning of abandoned client snapshots.
type StateRetentionJobParams struct {
	Logger    *logger.Logger
	Store     statePurger
	Retention time.Duration
}

// NewStateRetentionJob deletes persisted snapshots untouched for longer than Retention.
func NewStateRetentionJob(params StateRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("state store required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultStateRetention
	}
	return &stateRetentionJob{
		logg:      params.Logger,
		store:     params.Store,
		retention: retention,
		now:       time.Now,
	}, nil
}

type stateRetentionJob struct {
	logg      *logger.Logger
	store     statePurger
	retention time.Duration
	now       func() time.Time
}

func (j *stateRetentionJob) Name() string { return "client-state-retention" }

func (j *stateRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.store.PurgeBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("client state retention: %w", err)
	}
	if deleted > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"cutoff":       cutoff,
			"rows_deleted": deleted,
		})
		j.logg.Info(logCtx, "client state retention cleanup complete")
	}
	return nil
}
