// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/fleetgraph/internal/analytics"
)

// PopularCarsResponse is the data of GET /api/v1/cars/popular.
type PopularCarsResponse struct {
	Cars  []analytics.PopularCar `json:"cars"`
	Count int                    `json:"count"`
	Limit int                    `json:"limit"`
}

// PopularCars returns the most rented cars.
//
// Query: limit (1..max_limit, default popular_limit).
func (h *Handler) PopularCars(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, verr := limitParam(r, h.config.PopularLimit, h.config.MaxLimit)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	cars, err := h.analytics.PopularCars(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to compute popular cars", err)
		return
	}

	respondSuccess(w, http.StatusOK, PopularCarsResponse{Cars: cars, Count: len(cars), Limit: limit}, start)
}
