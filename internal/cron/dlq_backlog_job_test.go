package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/pkg/db/dbtest"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
)

type countFunc func(ctx context.Context) (int64, error)

func (f countFunc) Count(ctx context.Context) (int64, error) { return f(ctx) }

func TestDLQBacklogJobCountsDeadLetters(t *testing.T) {
	client := dbtest.Open(t)
	entry := models.OutboxDLQ{
		EventID:       uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		AttemptCount:  10,
		FailedAt:      time.Now().UTC(),
	}
	if err := client.DB().Create(&entry).Error; err != nil {
		t.Fatalf("seed dlq: %v", err)
	}

	job, err := NewDLQBacklogJob(logger.Nop(), outbox.NewDLQRepository(client.DB()))
	if err != nil {
		t.Fatalf("NewDLQBacklogJob: %v", err)
	}
	if job.Name() != "outbox-dlq-backlog" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestDLQBacklogJobPropagatesErrors(t *testing.T) {
	job, err := NewDLQBacklogJob(logger.Nop(), countFunc(func(context.Context) (int64, error) {
		return 0, errors.New("db down")
	}))
	if err != nil {
		t.Fatalf("NewDLQBacklogJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
