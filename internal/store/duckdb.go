// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetgraph/internal/models"
)

var duckdbSchema = []string{
	`CREATE TABLE IF NOT EXISTS cars (
		car_id      VARCHAR PRIMARY KEY,
		model       VARCHAR NOT NULL,
		available   BOOLEAN NOT NULL DEFAULT true,
		hourly_rate DOUBLE NOT NULL DEFAULT 10.0,
		category    VARCHAR NOT NULL DEFAULT 'Standard'
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		phone_number VARCHAR PRIMARY KEY,
		name         VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rentals (
		customer_id VARCHAR NOT NULL,
		car_id      VARCHAR NOT NULL,
		rent_time   TIMESTAMP NOT NULL,
		return_time TIMESTAMP,
		PRIMARY KEY (customer_id, car_id, rent_time)
	)`,
}

// DuckDB stores records in an embedded DuckDB database.
type DuckDB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// NewDuckDB opens the database file at path, creating tables as needed.
// An empty path opens an in-memory database.
func NewDuckDB(path string, logger zerolog.Logger) (*DuckDB, error) {
	connStr := path
	if connStr == "" {
		connStr = ":memory:"
	}
	// Disable auto-install/auto-load; no extensions are used.
	connStr += "?autoinstall_known_extensions=false&autoload_known_extensions=false"

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range duckdbSchema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	logger.Info().Str("path", connStr).Msg("DuckDB store opened")
	return &DuckDB{conn: conn, logger: logger}, nil
}

// CompletedRentals implements HistorySource.
func (d *DuckDB) CompletedRentals(ctx context.Context) ([]models.Rental, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT customer_id, car_id, rent_time, return_time
		FROM rentals
		WHERE return_time IS NOT NULL
		ORDER BY rent_time, customer_id, car_id`)
	if err != nil {
		return nil, fmt.Errorf("query rentals: %w", err)
	}
	defer rows.Close()

	var rentals []models.Rental
	for rows.Next() {
		var r models.Rental
		var returned sql.NullTime
		if err := rows.Scan(&r.CustomerID, &r.CarID, &r.RentTime, &returned); err != nil {
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		r.RentTime = r.RentTime.UTC()
		r.ReturnTime = returned.Time.UTC()
		rentals = append(rentals, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rentals: %w", err)
	}
	return rentals, nil
}

// Car implements CarResolver.
func (d *DuckDB) Car(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	err := d.conn.QueryRowContext(ctx,
		`SELECT car_id, model, available, hourly_rate, category FROM cars WHERE car_id = ?`, id,
	).Scan(&car.ID, &car.Model, &car.Available, &car.HourlyRate, &car.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query car %s: %w", id, err)
	}
	return &car, nil
}

// Customer implements CustomerResolver.
func (d *DuckDB) Customer(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	err := d.conn.QueryRowContext(ctx,
		`SELECT phone_number, name FROM customers WHERE phone_number = ?`, id,
	).Scan(&c.Phone, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query customer %s: %w", id, err)
	}
	return &c, nil
}

// SaveCar implements Writer.
func (d *DuckDB) SaveCar(ctx context.Context, car *models.Car) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO cars (car_id, model, available, hourly_rate, category)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (car_id) DO UPDATE SET
			model = EXCLUDED.model,
			available = EXCLUDED.available,
			hourly_rate = EXCLUDED.hourly_rate,
			category = EXCLUDED.category`,
		car.ID, car.Model, car.Available, car.HourlyRate, car.Category)
	if err != nil {
		return fmt.Errorf("save car %s: %w", car.ID, err)
	}
	return nil
}

// SaveCustomer implements Writer.
func (d *DuckDB) SaveCustomer(ctx context.Context, customer *models.Customer) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO customers (phone_number, name)
		VALUES (?, ?)
		ON CONFLICT (phone_number) DO UPDATE SET name = EXCLUDED.name`,
		customer.Phone, customer.Name)
	if err != nil {
		return fmt.Errorf("save customer %s: %w", customer.Phone, err)
	}
	return nil
}

// SaveRental implements Writer.
func (d *DuckDB) SaveRental(ctx context.Context, rental *models.Rental) error {
	var returned sql.NullTime
	if !rental.Active() {
		returned = sql.NullTime{Time: rental.ReturnTime.UTC(), Valid: true}
	}

	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO rentals (customer_id, car_id, rent_time, return_time)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (customer_id, car_id, rent_time) DO UPDATE SET
			return_time = EXCLUDED.return_time`,
		rental.CustomerID, rental.CarID, rental.RentTime.UTC(), returned)
	if err != nil {
		return fmt.Errorf("save rental %s/%s: %w", rental.CustomerID, rental.CarID, err)
	}
	return nil
}

// Close closes the connection pool.
func (d *DuckDB) Close() error {
	return d.conn.Close()
}
