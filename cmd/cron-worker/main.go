package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vaporhaus/storefront-backend/internal/bootstrap"
	"github.com/vaporhaus/storefront-backend/internal/cron"
	"github.com/vaporhaus/storefront-backend/internal/notifications"
	"github.com/vaporhaus/storefront-backend/pkg/config"
	"github.com/vaporhaus/storefront-backend/pkg/db"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/metrics"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
)

func main() {
	proc := bootstrap.Start("cron-worker", "cron-worker")
	cfg := proc.Config
	dbClient := proc.Database()
	redisClient := proc.Redis()

	env := cfg.App.Env
	if env == "" {
		env = "local"
	}
	lock, err := cron.NewRedisLock(redisClient, fmt.Sprintf("sf:cron-worker:lock:%s", env), cfg.Cron.LockTTL)
	proc.Must("build cron lock", err)
	gate, err := cron.NewRedisGate(redisClient, fmt.Sprintf("sf:cron-worker:ran:%s:", env))
	proc.Must("build cron gate", err)
	registry, err := buildRegistry(proc.Logger, dbClient, cfg.Cron)
	proc.Must("register cron jobs", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   proc.Logger,
		Registry: registry,
		Lock:     lock,
		Gate:     gate,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Tick:     cfg.Cron.Tick,
	})
	proc.Must("build cron service", err)

	proc.Serve("cron worker", service.Run)
}

// buildRegistry lists every maintenance job with its cadence.
func buildRegistry(logg *logger.Logger, dbClient *db.Client, cfg config.CronConfig) (*cron.Registry, error) {
	conn := dbClient.DB()
	retention, err := cron.NewOutboxRetentionJob(logg, dbClient, outbox.NewRepository(conn), cfg.OutboxRetention)
	if err != nil {
		return nil, err
	}
	cleanup, err := cron.NewNotificationCleanupJob(logg, notifications.NewRepository(conn), cfg.NotificationRetention)
	if err != nil {
		return nil, err
	}
	backlog, err := cron.NewDLQBacklogJob(logg, outbox.NewDLQRepository(conn))
	if err != nil {
		return nil, err
	}
	return cron.NewRegistry(
		cron.Entry{Job: retention, Every: 24 * time.Hour},
		cron.Entry{Job: cleanup, Every: 24 * time.Hour},
		cron.Entry{Job: backlog, Every: time.Hour},
	)
}
