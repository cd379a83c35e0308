package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/jewelmart-backend/pkg/logger"
)

const staleCartDays = 30

type StaleCartCleanupJobParams struct {
	Logger     *logger.Logger
	Repository staleCartRepo
	// Days without any change before an empty cart is removed.
	Days int
}

type staleCartRepo interface {
	DeleteStaleEmpty(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewStaleCartCleanupJob removes carts that are empty and untouched. Carts
// that still hold lines are never removed by this job.
func NewStaleCartCleanupJob(params StaleCartCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	days := params.Days
	if days <= 0 {
		days = staleCartDays
	}
	return &staleCartCleanupJob{
		logg: params.Logger,
		repo: params.Repository,
		days: days,
		now:  time.Now,
	}, nil
}

type staleCartCleanupJob struct {
	logg *logger.Logger
	repo staleCartRepo
	days int
	now  func() time.Time
}

func (j *staleCartCleanupJob) Name() string { return "stale-cart-cleanup" }

func (j *staleCartCleanupJob) Run(ctx context.Context) (int64, error) {
	cutoff := daysBefore(j.now(), j.days)
	deleted, err := j.repo.DeleteStaleEmpty(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("stale cart cleanup: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{"cutoff": cutoff, "days": j.days}), "stale cart cleanup complete")
	return deleted, nil
}
