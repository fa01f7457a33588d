// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package eventprocessor feeds completed rentals into the analytics graph
// through Watermill.
//
// The API publishes a RentalCompletedEvent on the rentals.completed topic. The
// RentalHandler, registered on a Router, persists the rental and appends it to
// the live graph. The in-process transport is Watermill's GoChannel pub/sub.
//
//	pubSub := eventprocessor.NewPubSub(cfg.Events, logger)
//	router, _ := eventprocessor.NewRouter(eventprocessor.RouterConfigFrom(cfg.Events), pubSub, logger)
//	router.AddConsumerHandler("rentals", cfg.Events.Topic, eventprocessor.SharedSubscriber(pubSub), handler.Handle)
//	go router.Run(ctx)
package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/fleetgraph/internal/config"
)

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// PoisonQueueTopic receives messages that still fail after all retries.
	// Empty disables the poison queue.
	PoisonQueueTopic string
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		RetryMultiplier:      2.0,
		PoisonQueueTopic:     "rentals.poison",
	}
}

// RouterConfigFrom derives a RouterConfig from the events configuration.
func RouterConfigFrom(cfg config.EventsConfig) RouterConfig {
	rc := DefaultRouterConfig()
	rc.CloseTimeout = cfg.CloseTimeout
	rc.RetryMaxRetries = cfg.RetryMaxRetries
	rc.RetryInitialInterval = cfg.RetryInitialInterval
	rc.RetryMaxInterval = 50 * cfg.RetryInitialInterval
	rc.PoisonQueueTopic = cfg.PoisonTopic
	return rc
}

// NewPubSub returns the in-process GoChannel transport. It is both the
// Publisher and the Subscriber of the pipeline.
func NewPubSub(cfg config.EventsConfig, logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, logger)
}

// SharedSubscriber keeps sub open when a Router stops. Watermill closes the
// subscribers of its handlers on Close, which would also close a GoChannel
// that the Publisher still uses. The owner closes sub itself.
func SharedSubscriber(sub message.Subscriber) message.Subscriber {
	return sharedSubscriber{sub}
}

type sharedSubscriber struct {
	message.Subscriber
}

func (sharedSubscriber) Close() error { return nil }

// Router wraps the Watermill Router with pre-configured middleware:
// poison queue routing, exponential retry and panic recovery.
type Router struct {
	router   *message.Router
	config   RouterConfig
	logger   watermill.LoggerAdapter
	running  atomic.Bool
	handlers map[string]*message.Handler
}

// NewRouter creates a Router. poisonPublisher may be nil to disable the
// poison queue.
func NewRouter(cfg RouterConfig, poisonPublisher message.Publisher, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Middleware order is outer to inner:
	// 1. Poison Queue - route messages that exhausted their retries
	// 2. Retry - exponential backoff for transient failures
	// 3. Recoverer - convert handler panics into errors so they are retried
	if poisonPublisher != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPublisher, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)
	wmRouter.AddMiddleware(middleware.Recoverer)

	return &Router{
		router:   wmRouter,
		config:   cfg,
		logger:   logger,
		handlers: make(map[string]*message.Handler),
	}, nil
}

// AddConsumerHandler registers a handler that doesn't produce output messages.
func (r *Router) AddConsumerHandler(
	name string,
	subscribeTopic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	h := r.router.AddConsumerHandler(name, subscribeTopic, subscriber, handler)
	r.handlers[name] = h
	return h
}

// Run starts the router and blocks until context cancellation or Close().
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel that closes when the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close gracefully stops the router.
// Waits for in-flight messages to complete up to CloseTimeout.
func (r *Router) Close() error {
	return r.router.Close()
}

// IsRunning returns whether the router is currently processing messages.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// Handlers returns the number of registered handlers.
func (r *Router) Handlers() int {
	return len(r.handlers)
}
