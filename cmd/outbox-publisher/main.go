package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vaporhaus/storefront-backend/internal/bootstrap"
	"github.com/vaporhaus/storefront-backend/pkg/metrics"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
	"github.com/vaporhaus/storefront-backend/pkg/outbox/registry"
)

func main() {
	proc := bootstrap.Start("outbox-publisher", "outbox-publisher")
	dbClient := proc.Database()
	pubsubClient := proc.PubSub()

	events, err := registry.NewEventRegistry(proc.Config.PubSub)
	proc.Must("build event registry", err)

	conn := dbClient.DB()
	service, err := NewService(ServiceParams{
		Config:        proc.Config,
		Logger:        proc.Logger,
		DB:            dbClient,
		PubSub:        pubsubClient,
		Repository:    outbox.NewRepository(conn),
		Registry:      events,
		DLQRepository: outbox.NewDLQRepository(conn),
		Metrics:       metrics.NewCommerceMetrics(prometheus.DefaultRegisterer),
	})
	proc.Must("build outbox publisher", err)

	proc.Serve("outbox publisher", service.Run)
}
