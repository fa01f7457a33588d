// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package analytics

import (
	"context"
	"time"

	"github.com/tomtom215/fleetgraph/internal/cache"
	"github.com/tomtom215/fleetgraph/internal/graph"
	"github.com/tomtom215/fleetgraph/internal/models"
)

// PopularCar is a resolved car and its rental count.
type PopularCar struct {
	Car     models.Car `json:"car"`
	Rentals int        `json:"rentals"`
}

// RankedCar is a resolved recommendation and its support.
type RankedCar struct {
	Car     models.Car `json:"car"`
	Support int        `json:"support"`
}

// HistoryEntry is one rental of a customer. Model is empty when the car
// record cannot be resolved.
type HistoryEntry struct {
	CarID         string    `json:"car_id"`
	Model         string    `json:"model,omitempty"`
	RentalDate    time.Time `json:"rental_date"`
	DurationHours int       `json:"duration_hours"`
}

// Stats is a snapshot of the service state.
type Stats struct {
	Ready         bool         `json:"ready"`
	Graph         graph.Stats  `json:"graph"`
	LastBuild     *BuildResult `json:"last_build,omitempty"`
	CarCache      cache.Stats  `json:"car_cache"`
	CustomerCache cache.Stats  `json:"customer_cache"`
	Categories    int          `json:"categories"`
	Premium       int          `json:"premium_customers"`
	Blacklisted   int          `json:"blacklisted_customers"`
}

// PopularCars returns up to limit of the most rented cars, most rented first.
// The ranking is computed before resolution, so fewer than limit cars come
// back when some IDs cannot be resolved. limit <= 0 returns
// graph.ErrInvalidLimit.
func (s *Service) PopularCars(ctx context.Context, limit int) ([]PopularCar, error) {
	counts, err := s.graph.Load().MostPopular(limit)
	if err != nil {
		return nil, err
	}

	out := make([]PopularCar, 0, len(counts))
	for _, cc := range counts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if car, ok := s.resolveCar(ctx, cc.CarID); ok {
			out = append(out, PopularCar{Car: car, Rentals: cc.Rentals})
		}
	}
	return out, nil
}

// Recommendations returns the cars rented by customers who share a car with
// customerID, minus the cars customerID already rented, ordered by car ID.
// A customer without rentals gets an empty result.
func (s *Service) Recommendations(ctx context.Context, customerID string) ([]models.Car, error) {
	ids := s.graph.Load().Recommend(customerID)
	cars := s.resolveCars(ctx, ids)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cars, nil
}

// RankedRecommendations is Recommendations ordered by how many similar
// customers rented each car. limit <= 0 returns every candidate.
func (s *Service) RankedRecommendations(ctx context.Context, customerID string, limit int) ([]RankedCar, error) {
	// Resolve before truncating so unresolvable cars do not eat the limit.
	scored := s.graph.Load().RecommendRanked(customerID, 0)

	out := make([]RankedCar, 0, len(scored))
	for _, sc := range scored {
		if limit > 0 && len(out) == limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if car, ok := s.resolveCar(ctx, sc.CarID); ok {
			out = append(out, RankedCar{Car: car, Support: sc.Support})
		}
	}
	return out, nil
}

// CustomerHistory returns the customer's rentals in insertion order.
func (s *Service) CustomerHistory(ctx context.Context, customerID string) ([]HistoryEntry, error) {
	edges := s.graph.Load().Edges(customerID)

	out := make([]HistoryEntry, len(edges))
	for i, e := range edges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = HistoryEntry{
			CarID:         e.CounterpartID,
			RentalDate:    e.RentalDate,
			DurationHours: e.DurationHours,
		}
		if car, ok := s.resolveCar(ctx, e.CounterpartID); ok {
			out[i].Model = car.DisplayName()
		}
	}
	return out, nil
}

// Stats returns a snapshot of graph, cache and flag counts.
func (s *Service) Stats() Stats {
	s.flagsMu.RLock()
	premium, blacklisted := len(s.premium), len(s.blacklisted)
	s.flagsMu.RUnlock()

	return Stats{
		Ready:         s.Ready(),
		Graph:         s.graph.Load().Stats(),
		LastBuild:     s.lastBuild.Load(),
		CarCache:      s.carCache.Stats(),
		CustomerCache: s.customerCache.Stats(),
		Categories:    s.categories.Len(),
		Premium:       premium,
		Blacklisted:   blacklisted,
	}
}
