// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetgraph/internal/config"
	"github.com/tomtom215/fleetgraph/internal/models"
)

func ts(s string) time.Time {
	t, err := time.ParseInLocation(models.TimeLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// backends returns one fresh instance of every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	b, err := NewBadger(filepath.Join(t.TempDir(), "badger"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBadger() error = %v", err)
	}
	d, err := NewDuckDB(filepath.Join(t.TempDir(), "fleet.duckdb"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDuckDB() error = %v", err)
	}

	stores := map[string]Store{
		"memory": NewMemory(),
		"badger": b,
		"duckdb": d,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			car := models.NewCar("C1", "Civic")
			if err := s.SaveCar(ctx, &car); err != nil {
				t.Fatalf("SaveCar() error = %v", err)
			}
			if err := s.SaveCustomer(ctx, &models.Customer{Phone: "555", Name: "Ana"}); err != nil {
				t.Fatalf("SaveCustomer() error = %v", err)
			}

			got, err := s.Car(ctx, "C1")
			if err != nil {
				t.Fatalf("Car() error = %v", err)
			}
			if got.Model != "Civic" || got.HourlyRate != models.DefaultHourlyRate || got.Category != models.DefaultCategory || !got.Available {
				t.Errorf("Car() = %+v", got)
			}

			cust, err := s.Customer(ctx, "555")
			if err != nil || cust.Name != "Ana" {
				t.Errorf("Customer() = %+v, %v", cust, err)
			}

			if _, err := s.Car(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Car(missing) error = %v, want ErrNotFound", err)
			}
			if _, err := s.Customer(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Customer(missing) error = %v, want ErrNotFound", err)
			}

			// Overwrite replaces.
			car.Model = "Civic Type R"
			if err := s.SaveCar(ctx, &car); err != nil {
				t.Fatalf("SaveCar() overwrite error = %v", err)
			}
			if got, _ := s.Car(ctx, "C1"); got == nil || got.Model != "Civic Type R" {
				t.Errorf("Car() after overwrite = %+v", got)
			}

			rentals := []models.Rental{
				{CustomerID: "555", CarID: "C2", RentTime: ts("2024-01-02 10:00:00"), ReturnTime: ts("2024-01-02 12:30:00")},
				{CustomerID: "555", CarID: "C1", RentTime: ts("2024-01-01 10:00:00"), ReturnTime: ts("2024-01-01 15:00:00")},
				{CustomerID: "777", CarID: "C1", RentTime: ts("2024-01-03 09:00:00")}, // active
			}
			for i := range rentals {
				if err := s.SaveRental(ctx, &rentals[i]); err != nil {
					t.Fatalf("SaveRental() error = %v", err)
				}
			}
			// Same (customer, car, rent time) is an upsert, not a second rental.
			if err := s.SaveRental(ctx, &rentals[0]); err != nil {
				t.Fatalf("SaveRental() repeat error = %v", err)
			}

			history, err := s.CompletedRentals(ctx)
			if err != nil {
				t.Fatalf("CompletedRentals() error = %v", err)
			}
			if len(history) != 2 {
				t.Fatalf("CompletedRentals() returned %d rentals, want 2: %+v", len(history), history)
			}
			if history[0].CarID != "C1" || history[1].CarID != "C2" {
				t.Errorf("CompletedRentals() order = %s, %s; want C1, C2", history[0].CarID, history[1].CarID)
			}
			if got := history[0].DurationHours(); got != 5 {
				t.Errorf("DurationHours() = %d, want 5", got)
			}
			if !history[1].ReturnTime.Equal(rentals[0].ReturnTime) {
				t.Errorf("ReturnTime = %v, want %v", history[1].ReturnTime, rentals[0].ReturnTime)
			}
		})
	}
}

func TestStore_RentalIdentity(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rent := ts("2024-02-01 08:00:00")

			// A rental saved while active and again once returned is one record.
			active := models.Rental{CustomerID: "555", CarID: "C1", RentTime: rent}
			if err := s.SaveRental(ctx, &active); err != nil {
				t.Fatalf("SaveRental(active) error = %v", err)
			}
			returned := models.Rental{CustomerID: "555", CarID: "C1", RentTime: rent, ReturnTime: rent.Add(4 * time.Hour)}
			if err := s.SaveRental(ctx, &returned); err != nil {
				t.Fatalf("SaveRental(returned) error = %v", err)
			}

			// Same customer and car at another time is a separate rental.
			again := models.Rental{CustomerID: "555", CarID: "C1", RentTime: rent.Add(24 * time.Hour), ReturnTime: rent.Add(26 * time.Hour)}
			if err := s.SaveRental(ctx, &again); err != nil {
				t.Fatalf("SaveRental(again) error = %v", err)
			}

			history, err := s.CompletedRentals(ctx)
			if err != nil {
				t.Fatalf("CompletedRentals() error = %v", err)
			}
			if len(history) != 2 {
				t.Fatalf("CompletedRentals() returned %d rentals, want 2: %+v", len(history), history)
			}
			if got := history[0].DurationHours(); got != 4 {
				t.Errorf("first rental DurationHours() = %d, want 4", got)
			}
			if got := history[1].DurationHours(); got != 2 {
				t.Errorf("second rental DurationHours() = %d, want 2", got)
			}
		})
	}
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	if _, err := m.CompletedRentals(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("CompletedRentals() error = %v, want context.Canceled", err)
	}
	if _, err := m.Car(ctx, "C1"); !errors.Is(err, context.Canceled) {
		t.Errorf("Car() error = %v, want context.Canceled", err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{"memory", config.StoreConfig{Driver: config.DriverMemory}, false},
		{"badger in memory", config.StoreConfig{Driver: config.DriverBadger}, false},
		{"duckdb in memory", config.StoreConfig{Driver: config.DriverDuckDB}, false},
		{"unknown", config.StoreConfig{Driver: "postgres"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(&tt.cfg, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if s != nil {
				_ = s.Close()
			}
		})
	}
}
