// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package models

import (
	"errors"
	"time"
)

// RentalCompletedEvent announces that a car was returned. It is the payload
// of the rentals.completed topic.
type RentalCompletedEvent struct {
	EventID     string    `json:"event_id"`
	CustomerID  string    `json:"customer_id"`
	CarID       string    `json:"car_id"`
	RentTime    time.Time `json:"rent_time"`
	ReturnTime  time.Time `json:"return_time"`
	PublishedAt time.Time `json:"published_at"`
}

// Rental converts the event to a history record.
func (e *RentalCompletedEvent) Rental() Rental {
	return Rental{
		CustomerID: e.CustomerID,
		CarID:      e.CarID,
		RentTime:   e.RentTime,
		ReturnTime: e.ReturnTime,
	}
}

// Validate rejects events that do not describe a completed rental.
func (e *RentalCompletedEvent) Validate() error {
	if e.ReturnTime.IsZero() {
		return errors.Join(ErrInvalidRental, errors.New("completed rental requires a return time"))
	}
	r := e.Rental()
	return r.Validate()
}
