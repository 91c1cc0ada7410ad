package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/pkg/db/dbtest"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/outbox/payloads"
)

func TestEmitStoresEnvelopeInsideTransaction(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, logger.Nop())
	ctx := context.Background()
	orderID := uuid.New()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data:          payloads.OrderCreatedEvent{OrderID: orderID, Total: 1500, ItemCount: 1},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Find(&rows).Error)
	require.Len(t, rows, 1)

	var data payloads.OrderCreatedEvent
	env, err := DecodeEnvelope(rows[0].Payload, &data)
	require.NoError(t, err)
	require.Equal(t, 1, env.Version)
	require.NotEmpty(t, env.EventID)
	require.Equal(t, orderID, data.OrderID)
	require.Equal(t, 1500, data.Total)

	// rolled back with the caller
	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Data:          map[string]any{},
		}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)
	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEmitValidation(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))

	client := dbtest.Open(t)
	require.Error(t, svc.Emit(context.Background(), client.DB(), DomainEvent{EventType: "nope", AggregateType: enums.AggregateOrder, AggregateID: uuid.New()}))
	require.ErrorContains(t, svc.Emit(context.Background(), client.DB(), DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
	}), "aggregate id required")

	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()
	tx := client.DB()

	first := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: []byte(`{}`)}
	second := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: []byte(`{}`)}
	first.ID, second.ID = uuid.New(), uuid.New()
	require.NoError(t, repo.Insert(tx, first))
	require.NoError(t, repo.Insert(tx, second))

	pending, err := repo.FetchUnpublishedForPublish(tx, 10, 3)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, repo.MarkPublishedTx(tx, first.ID))
	require.NoError(t, repo.MarkFailedTx(tx, second.ID, errors.New("transient")))

	pending, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, 1, pending[0].AttemptCount)
	require.Equal(t, "transient", *pending[0].LastError)

	require.NoError(t, repo.MarkTerminalTx(tx, second.ID, errors.New("dead"), 3))
	pending, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
	require.NoError(t, err)
	require.Empty(t, pending)

	deleted, err := repo.DeletePublishedBefore(ctx, tx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
}
