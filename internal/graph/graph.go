// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package graph implements the bipartite customer/car rental graph.
//
// Every completed rental is stored as two mirrored edges: one in the
// customer adjacency map pointing at the car, one in the car adjacency map
// pointing at the customer. Neighbor queries from either side are therefore
// O(degree). The graph is append-only and keeps parallel edges, so a
// customer who rents the same car twice contributes two edges and two
// points of popularity.
//
// Two ranking queries are built on top:
//
//   - MostPopular: cars ordered by incident edge count.
//   - Recommend: two-hop collaborative filtering. Cars rented by customers
//     who share at least one car with the query customer, minus the cars the
//     query customer already rented.
package graph

import (
	"sort"
	"sync"
	"time"
)

// Edge is one side of a rental relationship. For a customer node the
// counterpart is a car ID and vice versa.
type Edge struct {
	CounterpartID string    `json:"counterpart_id"`
	RentalDate    time.Time `json:"rental_date"`
	DurationHours int       `json:"duration_hours"`
}

// Stats summarizes the graph size.
type Stats struct {
	Customers int `json:"customers"`
	Cars      int `json:"cars"`
	Rentals   int `json:"rentals"`
}

// Graph is the rental graph. One writer and many readers may use it
// concurrently.
type Graph struct {
	mu sync.RWMutex

	customerToCars map[string][]Edge
	carToCustomers map[string][]Edge
	rentals        int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		customerToCars: make(map[string][]Edge),
		carToCustomers: make(map[string][]Edge),
	}
}

// AddRental records one rental as a mirrored edge pair. Repeated calls for
// the same pair add parallel edges.
func (g *Graph) AddRental(customerID, carID string, date time.Time, durationHours int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.customerToCars[customerID] = append(g.customerToCars[customerID], Edge{
		CounterpartID: carID,
		RentalDate:    date,
		DurationHours: durationHours,
	})
	g.carToCustomers[carID] = append(g.carToCustomers[carID], Edge{
		CounterpartID: customerID,
		RentalDate:    date,
		DurationHours: durationHours,
	})
	g.rentals++
}

// CarsRentedBy returns the car IDs rented by customerID in insertion order,
// one entry per rental.
func (g *Graph) CarsRentedBy(customerID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return counterparts(g.customerToCars[customerID])
}

// CustomersWhoRented returns the customer IDs that rented carID in insertion
// order, one entry per rental.
func (g *Graph) CustomersWhoRented(carID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return counterparts(g.carToCustomers[carID])
}

// Edges returns a copy of customerID's rental edges in insertion order.
func (g *Graph) Edges(customerID string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := g.customerToCars[customerID]
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// HasCustomer reports whether customerID has at least one rental.
func (g *Graph) HasCustomer(customerID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.customerToCars[customerID]) > 0
}

// HasCar reports whether carID was rented at least once.
func (g *Graph) HasCar(carID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.carToCustomers[carID]) > 0
}

// Stats returns node and rental counts.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Stats{
		Customers: len(g.customerToCars),
		Cars:      len(g.carToCustomers),
		Rentals:   g.rentals,
	}
}

// CustomerIDs returns every customer with at least one rental, sorted.
func (g *Graph) CustomerIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.customerToCars)
}

func sortedKeys(m map[string][]Edge) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func counterparts(edges []Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.CounterpartID
	}
	return ids
}
