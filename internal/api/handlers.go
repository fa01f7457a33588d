// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package api serves the rental analytics over HTTP with a chi router.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_health.go: liveness and readiness probes
//   - handlers_cars.go: popular cars
//   - handlers_customers.go: recommendations, history and customer flags
//   - handlers_categories.go: category price list
//   - handlers_rentals.go: rental submission through the event pipeline
//   - handlers_graph.go: graph statistics and rebuild
package api

import (
	"context"
	"time"

	"github.com/tomtom215/fleetgraph/internal/analytics"
	"github.com/tomtom215/fleetgraph/internal/config"
	"github.com/tomtom215/fleetgraph/internal/models"
)

// RentalPublisher publishes completed rentals to the event pipeline.
type RentalPublisher interface {
	PublishRental(ctx context.Context, rental models.Rental) (string, error)
}

// BreakerReporter exposes circuit breaker states for the stats endpoint.
type BreakerReporter interface {
	BreakerStates() map[string]string
}

// Handler contains dependencies for API handlers
type Handler struct {
	analytics *analytics.Service
	config    *config.AnalyticsConfig
	startTime time.Time

	publisher RentalPublisher // optional; POST /rentals answers 503 without it
	breakers  BreakerReporter // optional
}

// NewHandler creates a new API handler.
//
//	handler := api.NewHandler(svc, &cfg.Analytics)
//	handler.SetRentalPublisher(publisher)
//	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))
//	http.ListenAndServe(cfg.Server.Addr(), router.SetupChi())
func NewHandler(svc *analytics.Service, cfg *config.AnalyticsConfig) *Handler {
	return &Handler{
		analytics: svc,
		config:    cfg,
		startTime: time.Now(),
	}
}

// SetRentalPublisher enables POST /api/v1/rentals.
func (h *Handler) SetRentalPublisher(p RentalPublisher) {
	h.publisher = p
}

// SetBreakerReporter adds breaker states to the graph stats response.
func (h *Handler) SetBreakerReporter(b BreakerReporter) {
	h.breakers = b
}
