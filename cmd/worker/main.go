package main

import (
	"github.com/vaporhaus/storefront-backend/internal/bootstrap"
	"github.com/vaporhaus/storefront-backend/internal/notifications"
	"github.com/vaporhaus/storefront-backend/pkg/outbox/idempotency"
)

func main() {
	proc := bootstrap.Start("worker", "worker")
	if !proc.Config.FeatureFlags.Notifications {
		proc.Logger.Info(proc.Context(), "notifications disabled, worker has nothing to consume")
		_ = proc.Close()
		return
	}

	dbClient := proc.Database()
	redisClient := proc.Redis()
	pubsubClient := proc.PubSub()

	seen, err := idempotency.NewManager(redisClient, proc.Config.Eventing.OutboxIdempotencyTTL)
	proc.Must("build idempotency manager", err)
	consumer, err := notifications.NewConsumer(notifications.NewRepository(dbClient.DB()), seen, proc.Logger)
	proc.Must("build notification consumer", err)

	service, err := NewService(ServiceParams{
		Logger:               proc.Logger,
		DB:                   dbClient,
		Redis:                redisClient,
		PubSub:               pubsubClient,
		NotificationConsumer: consumer,
	})
	proc.Must("build worker", err)

	proc.Serve("worker", service.Run)
}
