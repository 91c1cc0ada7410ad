package notifications

import (
	"context"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
	"github.com/vaporhaus/storefront-backend/pkg/outbox/payloads"
)

const orderNotificationConsumer = "order-notifications"

type creator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type deduper interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer watches domain events and raises an admin alert for every new order.
type Consumer struct {
	repo        creator
	idempotency deduper
	logg        *logger.Logger
}

// NewConsumer builds an order notification consumer.
func NewConsumer(repo creator, manager deduper, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{repo: repo, idempotency: manager, logg: logg}, nil
}

// Run receives from the subscription until the context is canceled.
func (c *Consumer) Run(ctx context.Context, subscription *pubsub.Subscriber) error {
	if subscription == nil {
		return fmt.Errorf("domain subscription required")
	}
	return subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg) == redeliver {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type outcome int

const (
	done outcome = iota
	redeliver
)

// process acks anything that cannot succeed on redelivery and nacks only transient failures.
func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) outcome {
	eventType := msg.Attributes["event_type"]
	if eventType != string(enums.EventOrderCreated) {
		return done
	}
	ctx = c.logg.WithFields(ctx, map[string]any{"message_id": msg.ID, "event_type": eventType})

	var order payloads.OrderCreatedEvent
	env, err := outbox.DecodeEnvelope(msg.Data, &order)
	if err != nil {
		c.logg.Error(ctx, "dropping undecodable message", err)
		return done
	}
	eventID, err := uuid.Parse(env.EventID)
	if err != nil {
		c.logg.Error(ctx, "dropping message with invalid event id", err)
		return done
	}
	ctx = c.logg.WithFields(ctx, map[string]any{"event_id": env.EventID, "order_id": order.OrderID.String()})

	seen, err := c.idempotency.CheckAndMarkProcessed(ctx, orderNotificationConsumer, eventID)
	switch {
	case err != nil:
		c.logg.Error(ctx, "idempotency check failed", err)
		return redeliver
	case seen:
		c.logg.Debug(ctx, "duplicate delivery skipped")
		return done
	}

	if err := c.repo.Create(ctx, orderAlert(order)); err != nil {
		c.logg.Error(ctx, "failed to store notification", err)
		if relErr := c.idempotency.Release(ctx, orderNotificationConsumer, eventID); relErr != nil {
			c.logg.Error(ctx, "failed to release idempotency claim", relErr)
		}
		return redeliver
	}
	c.logg.Info(ctx, "admin notified of new order")
	return done
}

func orderAlert(p payloads.OrderCreatedEvent) *models.Notification {
	name := strings.TrimSpace(p.CustomerName)
	if name == "" {
		name = "a guest"
	}
	noun := "items"
	if p.ItemCount == 1 {
		noun = "item"
	}
	link := fmt.Sprintf("/admin/orders/%s", p.OrderID)
	return &models.Notification{
		Type:  enums.NotificationTypeOrderAlert,
		Title: "New order received",
		Message: fmt.Sprintf("Order from %s with %d %s, total %s.",
			name, p.ItemCount, noun, decimal.New(int64(p.Total), -2).StringFixed(2)),
		Link: &link,
	}
}
