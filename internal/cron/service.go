package cron

import (
	"context"
	"errors"
	"time"

	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/metrics"
)

const defaultTick = 5 * time.Minute

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Gate     Gate
	Metrics  *metrics.JobMetrics
	Tick     time.Duration
}

// Service wakes on every tick and runs whichever registered jobs are due.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	gate     Gate
	metrics  *metrics.JobMetrics
	tick     time.Duration
}

func NewService(p ServiceParams) (*Service, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("cron: logger required")
	case p.Registry == nil:
		return nil, errors.New("cron: registry required")
	case p.Lock == nil:
		return nil, errors.New("cron: lock required")
	case p.Gate == nil:
		return nil, errors.New("cron: gate required")
	}
	tick := p.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	return &Service{
		logg:     p.Logger,
		registry: p.Registry,
		lock:     p.Lock,
		gate:     p.Gate,
		metrics:  p.Metrics,
		tick:     tick,
	}, nil
}

// Run ticks immediately and then on every interval until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		s.runDue(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runDue executes every job whose claim succeeds and returns their names.
func (s *Service) runDue(ctx context.Context) []string {
	held, err := s.lock.Acquire(ctx)
	if err != nil {
		s.logg.Error(ctx, "cron lock unavailable", err)
		return nil
	}
	if !held {
		s.logg.Info(ctx, "cron lock held by another worker")
		return nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "release cron lock", err)
		}
	}()

	var ran []string
	for _, entry := range s.registry.Entries() {
		if ctx.Err() != nil {
			break
		}
		name := entry.Job.Name()
		due, err := s.gate.Claim(ctx, name, entry.Every)
		if err != nil {
			s.logg.Error(s.logg.WithField(ctx, "job", name), "claim job", err)
			continue
		}
		if !due {
			continue
		}
		ran = append(ran, name)
		if s.execute(ctx, entry.Job) == nil {
			continue
		}
		if err := s.gate.Forget(context.WithoutCancel(ctx), name); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "job", name), "forget failed job claim", err)
		}
	}
	return ran
}

func (s *Service) execute(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "event": "cron.job"})
	started := time.Now()
	err := job.Run(jobCtx)
	took := time.Since(started)
	s.metrics.Observe(job.Name(), took, err)

	jobCtx = s.logg.WithField(jobCtx, "duration_ms", took.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed, retrying next tick", err)
		return err
	}
	s.logg.Info(jobCtx, "job done")
	return nil
}
