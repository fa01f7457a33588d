// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidLimit is returned when a ranking limit is not positive.
var ErrInvalidLimit = errors.New("limit must be positive")

// CarCount is a car and the number of times it was rented.
type CarCount struct {
	CarID   string `json:"car_id"`
	Rentals int    `json:"rentals"`
}

// ScoredCar is a recommended car and the number of distinct similar
// customers that rented it.
type ScoredCar struct {
	CarID   string `json:"car_id"`
	Support int    `json:"support"`
}

// MostPopular returns up to limit cars ordered by rental count descending.
// Cars with equal counts are ordered by car ID ascending.
func (g *Graph) MostPopular(limit int) ([]CarCount, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}

	g.mu.RLock()
	counts := make([]CarCount, 0, len(g.carToCustomers))
	for carID, edges := range g.carToCustomers {
		counts = append(counts, CarCount{CarID: carID, Rentals: len(edges)})
	}
	g.mu.RUnlock()

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Rentals != counts[j].Rentals {
			return counts[i].Rentals > counts[j].Rentals
		}
		return counts[i].CarID < counts[j].CarID
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// Recommend returns the two-hop recommendation set for customerID, sorted
// by car ID. The result never contains a car the customer already rented
// and is empty when the customer has no rentals.
func (g *Graph) Recommend(customerID string) []string {
	support := g.recommendSupport(customerID)

	ids := make([]string, 0, len(support))
	for carID := range support {
		ids = append(ids, carID)
	}
	sort.Strings(ids)
	return ids
}

// RecommendRanked returns the same set as Recommend ranked by support
// (distinct similar customers who rented the car) descending, then car ID.
// A limit <= 0 returns every candidate.
func (g *Graph) RecommendRanked(customerID string, limit int) []ScoredCar {
	support := g.recommendSupport(customerID)

	scored := make([]ScoredCar, 0, len(support))
	for carID, n := range support {
		scored = append(scored, ScoredCar{CarID: carID, Support: n})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Support != scored[j].Support {
			return scored[i].Support > scored[j].Support
		}
		return scored[i].CarID < scored[j].CarID
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// recommendSupport maps each candidate car to the number of distinct
// similar customers that rented it.
func (g *Graph) recommendSupport(customerID string) map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	owned := make(map[string]struct{})
	for _, e := range g.customerToCars[customerID] {
		owned[e.CounterpartID] = struct{}{}
	}

	similar := make(map[string]struct{})
	for carID := range owned {
		for _, e := range g.carToCustomers[carID] {
			if e.CounterpartID != customerID {
				similar[e.CounterpartID] = struct{}{}
			}
		}
	}

	support := make(map[string]int)
	for other := range similar {
		seen := make(map[string]struct{})
		for _, e := range g.customerToCars[other] {
			carID := e.CounterpartID
			if _, mine := owned[carID]; mine {
				continue
			}
			if _, dup := seen[carID]; dup {
				continue
			}
			seen[carID] = struct{}{}
			support[carID]++
		}
	}
	return support
}
