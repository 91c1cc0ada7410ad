package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vaporhaus/storefront-backend/api/controllers"
	"github.com/vaporhaus/storefront-backend/api/routes"
	"github.com/vaporhaus/storefront-backend/internal/bootstrap"
	"github.com/vaporhaus/storefront-backend/internal/identity"
	"github.com/vaporhaus/storefront-backend/pkg/auth/session"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/metrics"
	"github.com/vaporhaus/storefront-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	proc := bootstrap.Start("storefront-api", "api")
	cfg, logg, ctx := proc.Config, proc.Logger, proc.Context()

	dbClient := proc.Database()
	redisClient := proc.Redis()
	health := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	proc.Must("build session manager", err)

	var gcsClient *gcs.Client
	if cfg.GCS.Enabled() {
		gcsClient, err = gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		proc.Must("bootstrap gcs", err)
		health["gcs"] = gcsClient
	} else {
		logg.Warn(ctx, "gcs bucket not configured, media uploads disabled")
	}

	services, err := buildServices(deps{
		cfg:      cfg,
		logg:     logg,
		db:       dbClient,
		redis:    redisClient,
		sessions: sessionManager,
		gcs:      gcsClient,
		commerce: metrics.NewCommerceMetrics(prometheus.DefaultRegisterer),
	})
	proc.Must("build services", err)

	seeded, err := identity.SeedAdmin(ctx, identity.NewUserRepository(dbClient.DB()), cfg.Admin, cfg.Password)
	proc.Must("seed admin account", err)
	if seeded {
		logg.Info(logg.WithField(ctx, "email", cfg.Admin.Email), "seeded admin account")
	}

	router := routes.NewRouter(routes.Params{
		Config:   cfg,
		Logger:   logg,
		Redis:    redisClient,
		Sessions: sessionManager,
		Health:   health,
		Metrics:  metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Gatherer: prometheus.DefaultGatherer,
		Services: services,
	})
	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	proc.Serve("storefront api", func(ctx context.Context) error {
		return listen(logg.WithField(ctx, "port", cfg.App.Port), logg, server)
	})
}

// listen serves until ctx ends, then drains in-flight requests for up to shutdownTimeout.
func listen(ctx context.Context, logg *logger.Logger, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
