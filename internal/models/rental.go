// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package models holds the entity records shared by the store, analytics and
// API packages.
package models

import (
	"errors"
	"time"
)

const (
	// DefaultHourlyRate applies to cars created without an explicit rate.
	DefaultHourlyRate = 10.0

	// DefaultCategory applies to cars created without an explicit category.
	DefaultCategory = "Standard"

	// TimeLayout is the timestamp layout used in rental history files.
	TimeLayout = "2006-01-02 15:04:05"

	// ActiveMarker stands in for the return time of an unreturned rental.
	ActiveMarker = "Active"
)

// ErrInvalidRental is returned for rentals missing IDs or with a return
// time before the rent time.
var ErrInvalidRental = errors.New("invalid rental")

// Car is a rentable vehicle.
type Car struct {
	ID         string  `json:"car_id"`
	Model      string  `json:"model"`
	Available  bool    `json:"available"`
	HourlyRate float64 `json:"hourly_rate"`
	Category   string  `json:"category"`
}

// NewCar returns an available car with the default rate and category.
func NewCar(id, model string) Car {
	return Car{
		ID:         id,
		Model:      model,
		Available:  true,
		HourlyRate: DefaultHourlyRate,
		Category:   DefaultCategory,
	}
}

// DisplayName is the label shown for the car in listings.
func (c *Car) DisplayName() string {
	return c.Model
}

// Customer is identified by phone number.
type Customer struct {
	Phone string `json:"phone_number"`
	Name  string `json:"name"`
}

// Rental is one entry of a customer's travel history. A zero ReturnTime
// means the car has not been returned yet.
type Rental struct {
	CustomerID string    `json:"customer_id"`
	CarID      string    `json:"car_id"`
	RentTime   time.Time `json:"rent_time"`
	ReturnTime time.Time `json:"return_time"`
}

// Active reports whether the car is still out.
func (r *Rental) Active() bool {
	return r.ReturnTime.IsZero()
}

// DurationHours is floor((return - rent) / 1h), or 0 for an active rental.
func (r *Rental) DurationHours() int {
	if r.Active() {
		return 0
	}
	return int(r.ReturnTime.Sub(r.RentTime) / time.Hour)
}

// Validate checks IDs are present and a completed rental does not end
// before it starts.
func (r *Rental) Validate() error {
	if r.CustomerID == "" || r.CarID == "" {
		return errors.Join(ErrInvalidRental, errors.New("customer and car IDs are required"))
	}
	if r.RentTime.IsZero() {
		return errors.Join(ErrInvalidRental, errors.New("rent time is required"))
	}
	if !r.Active() && r.ReturnTime.Before(r.RentTime) {
		return errors.Join(ErrInvalidRental, errors.New("return time precedes rent time"))
	}
	return nil
}
