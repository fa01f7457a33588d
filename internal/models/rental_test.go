// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package models

import (
	"errors"
	"testing"
	"time"
)

func TestRental_DurationHours(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"active", time.Time{}, 0},
		{"exact hours", start.Add(3 * time.Hour), 3},
		{"floors partial hour", start.Add(3*time.Hour + 59*time.Minute + 59*time.Second), 3},
		{"under an hour", start.Add(45 * time.Minute), 0},
		{"multi day", start.Add(50 * time.Hour), 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Rental{CustomerID: "c", CarID: "x", RentTime: start, ReturnTime: tt.end}
			if got := r.DurationHours(); got != tt.want {
				t.Errorf("DurationHours() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRental_Validate(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		rental  Rental
		wantErr bool
	}{
		{"completed", Rental{CustomerID: "c", CarID: "x", RentTime: start, ReturnTime: start.Add(time.Hour)}, false},
		{"active", Rental{CustomerID: "c", CarID: "x", RentTime: start}, false},
		{"missing customer", Rental{CarID: "x", RentTime: start}, true},
		{"missing car", Rental{CustomerID: "c", RentTime: start}, true},
		{"missing rent time", Rental{CustomerID: "c", CarID: "x"}, true},
		{"return before rent", Rental{CustomerID: "c", CarID: "x", RentTime: start, ReturnTime: start.Add(-time.Minute)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rental.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRental) {
				t.Errorf("Validate() error = %v, want ErrInvalidRental", err)
			}
		})
	}
}

func TestRentalCompletedEvent_Validate(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	active := RentalCompletedEvent{CustomerID: "c", CarID: "x", RentTime: start}
	if err := active.Validate(); !errors.Is(err, ErrInvalidRental) {
		t.Errorf("Validate() on active rental = %v, want ErrInvalidRental", err)
	}

	done := RentalCompletedEvent{CustomerID: "c", CarID: "x", RentTime: start, ReturnTime: start.Add(2 * time.Hour)}
	if err := done.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if r := done.Rental(); r.DurationHours() != 2 {
		t.Errorf("Rental().DurationHours() = %d, want 2", r.DurationHours())
	}
}

func TestNewCar_Defaults(t *testing.T) {
	t.Parallel()
	c := NewCar("KA-01", "Swift")
	if c.HourlyRate != DefaultHourlyRate || c.Category != DefaultCategory || !c.Available {
		t.Errorf("NewCar() = %+v", c)
	}
	if c.DisplayName() != "Swift" {
		t.Errorf("DisplayName() = %q", c.DisplayName())
	}
}
