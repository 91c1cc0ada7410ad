// Package bootstrap holds the start-up and tear-down sequence shared by every binary:
// env loading, config, logger, signal-aware context and ordered resource cleanup.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/vaporhaus/storefront-backend/pkg/config"
	"github.com/vaporhaus/storefront-backend/pkg/db"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/migrate"
	"github.com/vaporhaus/storefront-backend/pkg/pubsub"
	"github.com/vaporhaus/storefront-backend/pkg/redis"
)

type closer struct {
	name  string
	close func() error
}

// Process is one running binary. Resources opened through it are closed in
// reverse order by Close, Must and Serve.
type Process struct {
	Config *config.Config
	Logger *logger.Logger

	ctx     context.Context
	stop    context.CancelFunc
	closers []closer
	exit    func(int)
}

// Start loads .env and config, then returns a process whose context ends on SIGINT or SIGTERM.
// A config error exits the binary.
func Start(serviceName, kind string) *Process {
	p := &Process{
		Logger: logger.New(logger.Options{ServiceName: serviceName}),
		ctx:    context.Background(),
		exit:   os.Exit,
	}
	if err := godotenv.Load(); err != nil {
		p.Logger.Warn(p.ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	p.Must("load config", err)
	cfg.Service.Kind = kind
	p.Config = cfg
	p.Logger = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	p.stop = stop
	p.ctx = p.Logger.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": kind,
	})
	return p
}

// Context is cancelled when the process is asked to stop.
func (p *Process) Context() context.Context {
	return p.ctx
}

// OnClose registers fn to run during Close.
func (p *Process) OnClose(name string, fn func() error) {
	p.closers = append(p.closers, closer{name: name, close: fn})
}

// Close runs every registered closer, newest first, and reports all failures.
func (p *Process) Close() error {
	ctx := context.WithoutCancel(p.ctx)
	var errs error
	for i := len(p.closers) - 1; i >= 0; i-- {
		c := p.closers[i]
		if err := c.close(); err != nil {
			p.Logger.Error(ctx, "error closing "+c.name, err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	p.closers = nil
	if p.stop != nil {
		p.stop()
	}
	return errs
}

// Must logs err, releases resources and exits with status 1. A nil err is a no-op.
func (p *Process) Must(step string, err error) {
	if err == nil {
		return
	}
	p.Logger.Error(p.ctx, "failed to "+step, err)
	_ = p.Close()
	p.exit(1)
}

// Database connects to the configured database and applies dev migrations.
func (p *Process) Database() *db.Client {
	client, err := db.New(p.ctx, p.Config.DB, p.Logger)
	p.Must("bootstrap database", err)
	p.OnClose("database", client.Close)
	p.Must("run dev migrations", migrate.MaybeRunDev(p.ctx, p.Config, p.Logger, client))
	return client
}

// Redis connects to the configured redis.
func (p *Process) Redis() *redis.Client {
	client, err := redis.New(p.ctx, p.Config.Redis, p.Logger)
	p.Must("bootstrap redis", err)
	p.OnClose("redis", client.Close)
	return client
}

// PubSub connects to the configured pubsub project.
func (p *Process) PubSub() *pubsub.Client {
	client, err := pubsub.NewClient(p.ctx, p.Config.GCP, p.Config.PubSub, p.Logger)
	p.Must("bootstrap pubsub", err)
	p.OnClose("pubsub", client.Close)
	return client
}

// Serve blocks on run and then closes the process. Cancellation counts as a clean stop.
func (p *Process) Serve(what string, run func(context.Context) error) {
	p.Logger.Info(p.ctx, "starting "+what)
	if err := run(p.ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.Must("run "+what, err)
		return
	}
	p.Logger.Info(p.ctx, what+" shutting down gracefully")
	_ = p.Close()
}
