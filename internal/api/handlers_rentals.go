// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/fleetgraph/internal/logging"
	"github.com/tomtom215/fleetgraph/internal/models"
)

// SubmitRentalResponse acknowledges an accepted rental.
type SubmitRentalResponse struct {
	EventID       string `json:"event_id"`
	CustomerID    string `json:"customer_id"`
	CarID         string `json:"car_id"`
	DurationHours int    `json:"duration_hours"`
}

// SubmitRental publishes a completed rental. The graph is updated
// asynchronously by the event pipeline, so the answer is 202 Accepted.
func (h *Handler) SubmitRental(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.publisher == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "Rental events are disabled", nil)
		return
	}

	var req SubmitRentalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondAPIError(w, http.StatusBadRequest, &models.APIError{Code: ErrCodeValidation, Message: err.Error()})
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	rental := req.Rental()
	eventID, err := h.publisher.PublishRental(r.Context(), rental)
	switch {
	case errors.Is(err, models.ErrInvalidRental):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	case err != nil:
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "Failed to publish rental event", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("event_id", eventID).
		Str("customer_id", rental.CustomerID).
		Str("car_id", rental.CarID).
		Msg("Rental accepted")

	respondSuccess(w, http.StatusAccepted, SubmitRentalResponse{
		EventID:       eventID,
		CustomerID:    rental.CustomerID,
		CarID:         rental.CarID,
		DurationHours: rental.DurationHours(),
	}, start)
}
