// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package store supplies rental history and car/customer records to the
// analytics service.
//
// Three backends implement Store:
//   - Memory: maps guarded by a RWMutex
//   - Badger: BadgerDB key/value store, JSON values
//   - DuckDB: embedded SQL database
//
// Open selects a backend from config.StoreConfig. Wrap the result in
// NewResilient to put resolver calls behind a circuit breaker.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetgraph/internal/config"
	"github.com/tomtom215/fleetgraph/internal/models"
)

// ErrNotFound is returned by resolvers for unknown IDs.
var ErrNotFound = errors.New("not found")

// HistorySource returns completed rentals for a graph build.
type HistorySource interface {
	// CompletedRentals returns every rental with a known return time.
	CompletedRentals(ctx context.Context) ([]models.Rental, error)
}

// CarResolver looks up cars by ID.
type CarResolver interface {
	Car(ctx context.Context, id string) (*models.Car, error)
}

// CustomerResolver looks up customers by phone number.
type CustomerResolver interface {
	Customer(ctx context.Context, id string) (*models.Customer, error)
}

// Writer persists records. LoadCSV and the event pipeline write through it.
type Writer interface {
	SaveCar(ctx context.Context, car *models.Car) error
	SaveCustomer(ctx context.Context, customer *models.Customer) error
	SaveRental(ctx context.Context, rental *models.Rental) error
}

// Store is the full data-access surface of a backend.
type Store interface {
	HistorySource
	CarResolver
	CustomerResolver
	Writer
	Close() error
}

// Open creates the backend named by cfg.Driver.
func Open(cfg *config.StoreConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemory(), nil
	case config.DriverBadger:
		return NewBadger(cfg.BadgerPath, logger)
	case config.DriverDuckDB:
		return NewDuckDB(cfg.DuckDBPath, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// completed filters out active rentals.
func completed(rentals []models.Rental) []models.Rental {
	out := rentals[:0]
	for i := range rentals {
		if !rentals[i].Active() {
			out = append(out, rentals[i])
		}
	}
	return out
}
