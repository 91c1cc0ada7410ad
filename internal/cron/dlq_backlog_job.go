package cron

import (
	"context"
	"fmt"

	"github.com/vaporhaus/storefront-backend/pkg/logger"
)

type dlqCounter interface {
	Count(ctx context.Context) (int64, error)
}

// NewDLQBacklogJob reports how many domain events were dead-lettered by the publisher.
// A non-empty backlog is logged at warn level so alerting can pick it up.
func NewDLQBacklogJob(logg *logger.Logger, counter dlqCounter) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if counter == nil {
		return nil, fmt.Errorf("dlq repository required")
	}
	return &dlqBacklogJob{logg: logg, counter: counter}, nil
}

type dlqBacklogJob struct {
	logg    *logger.Logger
	counter dlqCounter
}

func (j *dlqBacklogJob) Name() string { return "outbox-dlq-backlog" }

func (j *dlqBacklogJob) Run(ctx context.Context) error {
	count, err := j.counter.Count(ctx)
	if err != nil {
		return fmt.Errorf("count dlq: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "dlq_rows", count)
	if count > 0 {
		j.logg.Warn(logCtx, "dead-lettered outbox events awaiting review")
		return nil
	}
	j.logg.Info(logCtx, "outbox dlq empty")
	return nil
}
