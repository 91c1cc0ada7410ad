package main

import (
	"context"
	"errors"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/vaporhaus/storefront-backend/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

type subscriptionSource interface {
	pinger
	DomainSubscription() *gcppubsub.Subscriber
}

type eventConsumer interface {
	Run(ctx context.Context, subscription *gcppubsub.Subscriber) error
}

type ServiceParams struct {
	Logger               *logger.Logger
	DB                   pinger
	Redis                pinger
	PubSub               subscriptionSource
	NotificationConsumer eventConsumer
}

type dependency struct {
	name string
	ping pinger
}

// Service feeds the domain subscription to the notification consumer.
type Service struct {
	logg     *logger.Logger
	deps     []dependency
	source   subscriptionSource
	consumer eventConsumer
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.Redis == nil:
		return nil, errors.New("redis client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.NotificationConsumer == nil:
		return nil, errors.New("notification consumer is required")
	}
	return &Service{
		logg: params.Logger,
		deps: []dependency{
			{name: "database", ping: params.DB},
			{name: "redis", ping: params.Redis},
			{name: "pubsub", ping: params.PubSub},
		},
		source:   params.PubSub,
		consumer: params.NotificationConsumer,
	}, nil
}

// ready fails on the first dependency that does not answer a ping.
func (s *Service) ready(ctx context.Context) error {
	for _, d := range s.deps {
		if err := d.ping.Ping(ctx); err != nil {
			return fmt.Errorf("%s not ready: %w", d.name, err)
		}
	}
	return nil
}

// Run blocks until ctx ends or the consumer gives up.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	subscription := s.source.DomainSubscription()
	if subscription == nil {
		return errors.New("domain subscription not configured")
	}
	s.logg.Info(ctx, "consuming domain events")
	return s.consumer.Run(ctx, subscription)
}
