// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetgraph/internal/models"
)

// Key prefixes for namespacing records in BadgerDB.
const (
	badgerCarPrefix      = "car:"
	badgerCustomerPrefix = "customer:"
	badgerRentalPrefix   = "rental:"
)

// Badger stores records as JSON values in BadgerDB.
//
// Rental keys start with the zero-padded rent time so a prefix scan returns
// history in chronological order:
//
//	rental:00000001704103200000000000:5551234:C1
type Badger struct {
	db     *badger.DB
	logger zerolog.Logger
}

// NewBadger opens (or creates) a BadgerDB store at path. An empty path runs
// BadgerDB fully in memory.
func NewBadger(path string, logger zerolog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB internal logs
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.ValueLogFileSize = 64 << 20
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	logger.Info().Str("path", path).Bool("in_memory", path == "").Msg("BadgerDB store opened")
	return &Badger{db: db, logger: logger}, nil
}

func rentalBadgerKey(r *models.Rental) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s:%s", badgerRentalPrefix, r.RentTime.UnixNano(), r.CustomerID, r.CarID))
}

// CompletedRentals scans the rental prefix in key order.
func (b *Badger) CompletedRentals(ctx context.Context) ([]models.Rental, error) {
	var rentals []models.Rental

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerRentalPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			var r models.Rental
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				b.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping undecodable rental")
				continue
			}
			if !r.Active() {
				rentals = append(rentals, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan rentals: %w", err)
	}
	return rentals, nil
}

// Car implements CarResolver.
func (b *Badger) Car(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	if err := b.get(ctx, badgerCarPrefix+id, &car); err != nil {
		return nil, err
	}
	return &car, nil
}

// Customer implements CustomerResolver.
func (b *Badger) Customer(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	if err := b.get(ctx, badgerCustomerPrefix+id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (b *Badger) get(ctx context.Context, key string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
}

// SaveCar implements Writer.
func (b *Badger) SaveCar(ctx context.Context, car *models.Car) error {
	return b.put(ctx, []byte(badgerCarPrefix+car.ID), car)
}

// SaveCustomer implements Writer.
func (b *Badger) SaveCustomer(ctx context.Context, customer *models.Customer) error {
	return b.put(ctx, []byte(badgerCustomerPrefix+customer.Phone), customer)
}

// SaveRental implements Writer.
func (b *Badger) SaveRental(ctx context.Context, rental *models.Rental) error {
	return b.put(ctx, rentalBadgerKey(rental), rental)
}

func (b *Badger) put(ctx context.Context, key []byte, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}
