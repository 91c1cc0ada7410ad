package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vaporhaus/storefront-backend/pkg/db/dbtest"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
	"github.com/vaporhaus/storefront-backend/pkg/outbox/idempotency"
	"github.com/vaporhaus/storefront-backend/pkg/outbox/payloads"
	"github.com/vaporhaus/storefront-backend/pkg/redis"
)

type failingCreator struct{ calls int }

func (f *failingCreator) Create(context.Context, *models.Notification) error {
	f.calls++
	return errors.New("db down")
}

func newIdempotency(t *testing.T) *idempotency.Manager {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	m, err := idempotency.NewManager(redis.NewFromClient(raw), time.Hour)
	require.NoError(t, err)
	return m
}

func orderMessage(t *testing.T, eventID string, event payloads.OrderCreatedEvent) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	require.NoError(t, err)
	return &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       raw,
		Attributes: map[string]string{"event_type": string(enums.EventOrderCreated)},
	}
}

func TestConsumer_OrderCreatedRaisesSingleAlert(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t).DB())
	consumer, err := NewConsumer(repo, newIdempotency(t), logger.Nop())
	require.NoError(t, err)

	orderID := uuid.New()
	msg := orderMessage(t, uuid.NewString(), payloads.OrderCreatedEvent{
		OrderID:      orderID,
		IsGuest:      true,
		CustomerName: "Asha Rao",
		Total:        129900,
		ItemCount:    3,
	})

	require.True(t, consumer.process(ctx, msg) == done)
	require.True(t, consumer.process(ctx, msg) == done)

	rows, err := repo.List(ctx, listParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	alert := rows[0]
	require.Equal(t, enums.NotificationTypeOrderAlert, alert.Type)
	require.Equal(t, "New order received", alert.Title)
	require.Equal(t, "Order from Asha Rao with 3 items, total 1299.00.", alert.Message)
	require.NotNil(t, alert.Link)
	require.Equal(t, "/admin/orders/"+orderID.String(), *alert.Link)
	require.Nil(t, alert.ReadAt)
}

func TestConsumer_SkipsOtherEventsAndBadMessages(t *testing.T) {
	ctx := context.Background()
	creator := &failingCreator{}
	consumer, err := NewConsumer(creator, newIdempotency(t), logger.Nop())
	require.NoError(t, err)

	other := &pubsub.Message{Attributes: map[string]string{"event_type": string(enums.EventProductsImported)}}
	require.True(t, consumer.process(ctx, other) == done)

	garbled := &pubsub.Message{
		Data:       []byte("{not json"),
		Attributes: map[string]string{"event_type": string(enums.EventOrderCreated)},
	}
	require.True(t, consumer.process(ctx, garbled) == done)

	badID := orderMessage(t, "not-a-uuid", payloads.OrderCreatedEvent{OrderID: uuid.New()})
	require.True(t, consumer.process(ctx, badID) == done)

	require.Zero(t, creator.calls)
}

func TestConsumer_StoreFailureReleasesForRedelivery(t *testing.T) {
	ctx := context.Background()
	creator := &failingCreator{}
	consumer, err := NewConsumer(creator, newIdempotency(t), logger.Nop())
	require.NoError(t, err)

	msg := orderMessage(t, uuid.NewString(), payloads.OrderCreatedEvent{OrderID: uuid.New(), ItemCount: 1})
	require.True(t, consumer.process(ctx, msg) == redeliver)
	require.True(t, consumer.process(ctx, msg) == redeliver)
	require.Equal(t, 2, creator.calls)
}

func TestOrderAlert_GuestWithoutName(t *testing.T) {
	alert := orderAlert(payloads.OrderCreatedEvent{OrderID: uuid.New(), Total: 500, ItemCount: 1})
	require.Equal(t, "Order from a guest with 1 item, total 5.00.", alert.Message)
}

func TestNewConsumer_RequiresDependencies(t *testing.T) {
	manager := newIdempotency(t)
	_, err := NewConsumer(nil, manager, logger.Nop())
	require.Error(t, err)
	_, err = NewConsumer(&failingCreator{}, nil, logger.Nop())
	require.Error(t, err)
	_, err = NewConsumer(&failingCreator{}, manager, nil)
	require.Error(t, err)

	consumer, err := NewConsumer(&failingCreator{}, manager, logger.Nop())
	require.NoError(t, err)
	require.Error(t, consumer.Run(context.Background(), nil))
}
