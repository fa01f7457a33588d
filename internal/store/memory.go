// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/fleetgraph/internal/models"
)

// rentalKey identifies a history record. Saving the same key twice replaces
// it, so rows repeating a customer, car and rent time collapse into one.
type rentalKey struct {
	customerID string
	carID      string
	rentNanos  int64
}

// Memory keeps everything in process memory.
type Memory struct {
	mu        sync.RWMutex
	cars      map[string]models.Car
	customers map[string]models.Customer
	rentals   map[rentalKey]models.Rental
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		cars:      make(map[string]models.Car),
		customers: make(map[string]models.Customer),
		rentals:   make(map[rentalKey]models.Rental),
	}
}

// CompletedRentals returns completed rentals ordered by rent time.
func (m *Memory) CompletedRentals(ctx context.Context) ([]models.Rental, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := make([]models.Rental, 0, len(m.rentals))
	for _, r := range m.rentals {
		out = append(out, r)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].RentTime.Equal(out[j].RentTime) {
			return out[i].RentTime.Before(out[j].RentTime)
		}
		if out[i].CustomerID != out[j].CustomerID {
			return out[i].CustomerID < out[j].CustomerID
		}
		return out[i].CarID < out[j].CarID
	})
	return completed(out), nil
}

// Car implements CarResolver.
func (m *Memory) Car(ctx context.Context, id string) (*models.Car, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	car, ok := m.cars[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &car, nil
}

// Customer implements CustomerResolver.
func (m *Memory) Customer(ctx context.Context, id string) (*models.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// SaveCar inserts or replaces a car.
func (m *Memory) SaveCar(_ context.Context, car *models.Car) error {
	m.mu.Lock()
	m.cars[car.ID] = *car
	m.mu.Unlock()
	return nil
}

// SaveCustomer inserts or replaces a customer.
func (m *Memory) SaveCustomer(_ context.Context, customer *models.Customer) error {
	m.mu.Lock()
	m.customers[customer.Phone] = *customer
	m.mu.Unlock()
	return nil
}

// SaveRental inserts or replaces a history record.
func (m *Memory) SaveRental(_ context.Context, rental *models.Rental) error {
	key := rentalKey{
		customerID: rental.CustomerID,
		carID:      rental.CarID,
		rentNanos:  rental.RentTime.UnixNano(),
	}
	m.mu.Lock()
	m.rentals[key] = *rental
	m.mu.Unlock()
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
