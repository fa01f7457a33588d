// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package analytics ties the rental graph, the entity caches and the category
// list together behind the queries served by the API.
//
// A Service owns one graph at a time. Build loads the full completed history
// into a fresh graph and swaps it in, so readers never observe a half-built
// graph. ApplyRental persists a single rental and appends it to the current
// graph in one step, so a concurrent Build cannot load it and then see it
// appended a second time. Writers are serialized; readers are never blocked
// by a build.
//
// Car and customer IDs coming out of the graph are resolved through bounded
// LRU caches backed by the store. Concurrent misses for the same ID share one
// store call. IDs the store cannot resolve are skipped and logged; they never
// fail a query.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/fleetgraph/internal/cache"
	"github.com/tomtom215/fleetgraph/internal/category"
	"github.com/tomtom215/fleetgraph/internal/graph"
	"github.com/tomtom215/fleetgraph/internal/metrics"
	"github.com/tomtom215/fleetgraph/internal/models"
	"github.com/tomtom215/fleetgraph/internal/store"
)

// Cache names used in metrics labels.
const (
	carCacheName      = "car"
	customerCacheName = "customer"
)

// Deps are the collaborators of a Service. History, Cars, Customers and the
// two caches are required.
type Deps struct {
	History       store.HistorySource
	Cars          store.CarResolver
	Customers     store.CustomerResolver
	Categories    *category.List
	CarCache      *cache.LRU[string, models.Car]
	CustomerCache *cache.LRU[string, models.Customer]
	Logger        zerolog.Logger

	// WarmCaches resolves the most rented cars and the graph's customers
	// into the caches after every build.
	WarmCaches bool
}

// BuildResult describes one graph build.
type BuildResult struct {
	Loaded         int           `json:"loaded"`
	Added          int           `json:"added"`
	SkippedActive  int           `json:"skipped_active"`
	SkippedInvalid int           `json:"skipped_invalid"`
	Duration       time.Duration `json:"duration_ns"`
	BuiltAt        time.Time     `json:"built_at"`
}

// Service answers rental analytics queries.
type Service struct {
	history       store.HistorySource
	cars          store.CarResolver
	customers     store.CustomerResolver
	categories    *category.List
	carCache      *cache.LRU[string, models.Car]
	customerCache *cache.LRU[string, models.Customer]
	warmCaches    bool
	logger        zerolog.Logger

	graph     atomic.Pointer[graph.Graph]
	ready     atomic.Bool
	lastBuild atomic.Pointer[BuildResult]
	writeMu   sync.Mutex // serializes Build and ApplyRental

	carGroup      singleflight.Group
	customerGroup singleflight.Group

	flagsMu     sync.RWMutex
	premium     map[string]struct{}
	blacklisted map[string]struct{}
}

// New validates deps and returns a Service with an empty graph.
func New(deps Deps) (*Service, error) {
	switch {
	case deps.History == nil:
		return nil, errors.New("analytics: history source is required")
	case deps.Cars == nil:
		return nil, errors.New("analytics: car resolver is required")
	case deps.Customers == nil:
		return nil, errors.New("analytics: customer resolver is required")
	case deps.CarCache == nil || deps.CustomerCache == nil:
		return nil, errors.New("analytics: car and customer caches are required")
	}

	categories := deps.Categories
	if categories == nil {
		categories = category.NewList()
	}

	s := &Service{
		history:       deps.History,
		cars:          deps.Cars,
		customers:     deps.Customers,
		categories:    categories,
		carCache:      deps.CarCache,
		customerCache: deps.CustomerCache,
		warmCaches:    deps.WarmCaches,
		logger:        deps.Logger,
		premium:       make(map[string]struct{}),
		blacklisted:   make(map[string]struct{}),
	}
	s.graph.Store(graph.New())

	s.carCache.OnEvict(func(string, models.Car) {
		metrics.CacheEvictions.WithLabelValues(carCacheName).Inc()
	})
	s.customerCache.OnEvict(func(string, models.Customer) {
		metrics.CacheEvictions.WithLabelValues(customerCacheName).Inc()
	})

	return s, nil
}

// Ready reports whether at least one build has succeeded.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

// Graph returns the live graph. Callers must not mutate it.
func (s *Service) Graph() *graph.Graph {
	return s.graph.Load()
}

// Build loads the completed rental history into a fresh graph and makes it
// live. Active rentals and rentals returned before they started are skipped.
// On error the previous graph stays live.
func (s *Service) Build(ctx context.Context) (BuildResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	rentals, err := s.history.CompletedRentals(ctx)
	if err != nil {
		metrics.GraphBuildErrors.Inc()
		return BuildResult{}, fmt.Errorf("load rental history: %w", err)
	}

	g := graph.New()
	res := BuildResult{Loaded: len(rentals)}
	for i := range rentals {
		r := &rentals[i]
		switch {
		case r.Active():
			res.SkippedActive++
			metrics.RentalsSkipped.WithLabelValues("active").Inc()
		case r.Validate() != nil:
			res.SkippedInvalid++
			metrics.RentalsSkipped.WithLabelValues("invalid").Inc()
			s.logger.Debug().Str("customer_id", r.CustomerID).Str("car_id", r.CarID).
				Time("rent_time", r.RentTime).Time("return_time", r.ReturnTime).
				Msg("Skipping rental returned before it started")
		default:
			g.AddRental(r.CustomerID, r.CarID, r.RentTime, r.DurationHours())
			res.Added++
		}
	}

	s.graph.Store(g)
	s.ready.Store(true)

	res.Duration = time.Since(start)
	res.BuiltAt = time.Now().UTC()
	s.lastBuild.Store(&res)

	stats := g.Stats()
	metrics.RecordGraphBuild(res.Duration, stats.Customers, stats.Cars, stats.Rentals)

	s.logger.Info().
		Int("loaded", res.Loaded).
		Int("added", res.Added).
		Int("skipped_active", res.SkippedActive).
		Int("skipped_invalid", res.SkippedInvalid).
		Int("customers", stats.Customers).
		Int("cars", stats.Cars).
		Dur("duration", res.Duration).
		Msg("Rental graph built")

	if s.warmCaches {
		s.warm(ctx, g)
	}
	return res, nil
}

// warm fills the caches with the entities most likely to be asked for.
func (s *Service) warm(ctx context.Context, g *graph.Graph) {
	popular, err := g.MostPopular(s.carCache.Capacity())
	if err == nil {
		for _, pc := range popular {
			if ctx.Err() != nil {
				return
			}
			s.resolveCar(ctx, pc.CarID)
		}
	}

	customers := g.CustomerIDs()
	if n := s.customerCache.Capacity(); len(customers) > n {
		customers = customers[:n]
	}
	for _, id := range customers {
		if ctx.Err() != nil {
			return
		}
		_, _ = s.resolveCustomer(ctx, id)
	}

	s.logger.Debug().
		Int("cars", s.carCache.Len()).
		Int("customers", s.customerCache.Len()).
		Msg("Entity caches warmed")
}

// RecordRental adds one completed rental to the live graph without
// persisting it. Active and invalid rentals are rejected with
// models.ErrInvalidRental.
func (s *Service) RecordRental(ctx context.Context, r models.Rental) error {
	return s.ApplyRental(ctx, nil, r)
}

// ApplyRental saves r through w, when w is non-nil, and appends it to the
// live graph while holding the write lock that Build takes. Active and
// invalid rentals are rejected with models.ErrInvalidRental before anything
// is written.
func (s *Service) ApplyRental(ctx context.Context, w store.Writer, r models.Rental) error {
	if r.Active() {
		return fmt.Errorf("%w: rental is still active", models.ErrInvalidRental)
	}
	if err := r.Validate(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if w != nil {
		if err := w.SaveRental(ctx, &r); err != nil {
			return fmt.Errorf("persist rental: %w", err)
		}
	}

	g := s.graph.Load()
	g.AddRental(r.CustomerID, r.CarID, r.RentTime, r.DurationHours())

	stats := g.Stats()
	metrics.UpdateGraphSize(stats.Customers, stats.Cars, stats.Rentals)
	return nil
}
