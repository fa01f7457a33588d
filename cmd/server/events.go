// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package main

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/fleetgraph/internal/analytics"
	"github.com/tomtom215/fleetgraph/internal/config"
	"github.com/tomtom215/fleetgraph/internal/eventprocessor"
	"github.com/tomtom215/fleetgraph/internal/logging"
	"github.com/tomtom215/fleetgraph/internal/store"
	"github.com/tomtom215/fleetgraph/internal/supervisor"
	"github.com/tomtom215/fleetgraph/internal/supervisor/services"
)

const rentalHandlerName = "rental-completed"

// eventComponents holds the rental event pipeline.
type eventComponents struct {
	pubSub    *gochannel.GoChannel
	publisher *eventprocessor.Publisher
}

// Close stops publishing and closes the transport.
func (e *eventComponents) Close() {
	if err := e.publisher.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close rental publisher")
	}
	if err := e.pubSub.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close event transport")
	}
}

// initEvents builds the rental pipeline and adds its router to the
// messaging layer. Returns nil when events are disabled.
func initEvents(cfg *config.Config, svc *analytics.Service, w store.Writer, tree *supervisor.SupervisorTree) (*eventComponents, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Rental events disabled, POST /api/v1/rentals will answer 503")
		return nil, nil
	}

	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger("watermill"))
	pubSub := eventprocessor.NewPubSub(cfg.Events, wmLogger)

	handler, err := eventprocessor.NewRentalHandler(svc, w, logging.WithComponent("rental-events"))
	if err != nil {
		_ = pubSub.Close()
		return nil, fmt.Errorf("create rental handler: %w", err)
	}

	routerConfig := eventprocessor.RouterConfigFrom(cfg.Events)
	factory := func() (services.EventRouter, error) {
		router, err := eventprocessor.NewRouter(routerConfig, pubSub, wmLogger)
		if err != nil {
			return nil, err
		}
		router.AddConsumerHandler(rentalHandlerName, cfg.Events.Topic, eventprocessor.SharedSubscriber(pubSub), handler.Handle)
		return router, nil
	}
	tree.AddMessagingService(services.NewEventRouterService(factory, cfg.Events.CloseTimeout))

	logging.Info().
		Str("topic", cfg.Events.Topic).
		Str("poison_topic", cfg.Events.PoisonTopic).
		Int("max_retries", cfg.Events.RetryMaxRetries).
		Msg("Rental event router added to supervisor tree")

	return &eventComponents{
		pubSub:    pubSub,
		publisher: eventprocessor.NewPublisher(pubSub, cfg.Events.Topic),
	}, nil
}
