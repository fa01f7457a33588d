// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package services

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EventRouter is a message router that runs until its context ends.
// Satisfied by *eventprocessor.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a fresh router with its handlers registered. A
// Watermill router cannot run again after it stopped, so every restart
// needs a new one.
type RouterFactory func() (EventRouter, error)

// EventRouterService runs the rental event router under supervision.
//
//	svc := services.NewEventRouterService(func() (services.EventRouter, error) {
//	    return newRentalRouter(cfg.Events, pubSub, handler)
//	}, cfg.Events.CloseTimeout)
//	tree.AddMessagingService(svc)
type EventRouterService struct {
	factory         RouterFactory
	shutdownTimeout time.Duration
	name            string
}

// NewEventRouterService creates the service.
func NewEventRouterService(factory RouterFactory, shutdownTimeout time.Duration) *EventRouterService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EventRouterService{
		factory:         factory,
		shutdownTimeout: shutdownTimeout,
		name:            "event-router",
	}
}

// Serve implements suture.Service. A router that stops on its own is
// reported as an error so suture restarts it.
func (s *EventRouterService) Serve(ctx context.Context) error {
	router, err := s.factory()
	if err != nil {
		return fmt.Errorf("event router setup failed: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Run(ctx)
	}()

	select {
	case err := <-errCh:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			err = errors.New("stopped unexpectedly")
		}
		return fmt.Errorf("event router: %w", err)

	case <-ctx.Done():
		closed := make(chan error, 1)
		go func() { closed <- router.Close() }()

		select {
		case err := <-closed:
			if err != nil {
				return fmt.Errorf("event router close failed: %w", err)
			}
		case <-time.After(s.shutdownTimeout):
			return fmt.Errorf("event router close timed out after %s", s.shutdownTimeout)
		}
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for logging.
func (s *EventRouterService) String() string {
	return s.name
}
