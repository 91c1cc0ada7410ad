package cron

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/pkg/logger"
)

const (
	DefaultOutboxRetention       = 7 * 24 * time.Hour
	DefaultNotificationRetention = 30 * 24 * time.Hour
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type publishedOutboxPruner interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type readNotificationPruner interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// pruneJob deletes rows older than a retention window.
type pruneJob struct {
	name   string
	logg   *logger.Logger
	window time.Duration
	prune  func(ctx context.Context, cutoff time.Time) (int64, error)
	now    func() time.Time
}

func (j *pruneJob) Name() string { return j.name }

func (j *pruneJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.window)
	deleted, err := j.prune(ctx, cutoff)
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "old rows pruned")
	return nil
}

// NewOutboxRetentionJob removes outbox rows published before the window.
// Rows still waiting to publish are never touched.
func NewOutboxRetentionJob(logg *logger.Logger, db txRunner, repo publishedOutboxPruner, window time.Duration) (Job, error) {
	if logg == nil {
		return nil, errors.New("outbox retention: logger required")
	}
	if db == nil || repo == nil {
		return nil, errors.New("outbox retention: database required")
	}
	if window <= 0 {
		window = DefaultOutboxRetention
	}
	return &pruneJob{
		name:   "outbox-retention",
		logg:   logg,
		window: window,
		now:    time.Now,
		prune: func(ctx context.Context, cutoff time.Time) (int64, error) {
			var deleted int64
			err := db.WithTx(ctx, func(tx *gorm.DB) error {
				var err error
				deleted, err = repo.DeletePublishedBefore(ctx, tx, cutoff)
				return err
			})
			return deleted, err
		},
	}, nil
}

// NewNotificationCleanupJob removes admin alerts read before the window.
func NewNotificationCleanupJob(logg *logger.Logger, repo readNotificationPruner, window time.Duration) (Job, error) {
	if logg == nil {
		return nil, errors.New("notification cleanup: logger required")
	}
	if repo == nil {
		return nil, errors.New("notification cleanup: repository required")
	}
	if window <= 0 {
		window = DefaultNotificationRetention
	}
	return &pruneJob{
		name:   "notification-cleanup",
		logg:   logg,
		window: window,
		now:    time.Now,
		prune:  repo.DeleteReadBefore,
	}, nil
}
