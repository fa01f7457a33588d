// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/fleetgraph/internal/analytics"
	"github.com/tomtom215/fleetgraph/internal/models"
	"github.com/tomtom215/fleetgraph/internal/store"
)

// RecommendationsResponse is the data of GET .../recommendations.
// Exactly one of Cars and Ranked is set, depending on ?ranked.
type RecommendationsResponse struct {
	CustomerID string                `json:"customer_id"`
	Cars       []models.Car          `json:"cars,omitempty"`
	Ranked     []analytics.RankedCar `json:"ranked,omitempty"`
	Count      int                   `json:"count"`
}

// CustomerRentalsResponse is the data of GET .../rentals.
type CustomerRentalsResponse struct {
	CustomerID string                   `json:"customer_id"`
	Rentals    []analytics.HistoryEntry `json:"rentals"`
	Count      int                      `json:"count"`
}

// CustomerResponse is the data of GET /api/v1/customers/{customerID}.
type CustomerResponse struct {
	models.Customer
	Premium     bool `json:"premium"`
	Blacklisted bool `json:"blacklisted"`
	Rentals     int  `json:"rentals"`
}

// CustomerFlagResponse acknowledges a premium or blacklist mark.
type CustomerFlagResponse struct {
	CustomerID  string `json:"customer_id"`
	Premium     bool   `json:"premium"`
	Blacklisted bool   `json:"blacklisted"`
}

// Recommendations returns cars rented by similar customers.
//
// Query: ranked (bool), limit (ranked only; 1..max_limit, default all).
// Unknown customers get an empty list.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	customerID, verr := customerIDParam(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	resp := RecommendationsResponse{CustomerID: customerID}
	if boolParam(r, "ranked") {
		limit, verr := limitParam(r, 0, h.config.MaxLimit)
		if verr != nil {
			respondValidationError(w, verr)
			return
		}
		ranked, err := h.analytics.RankedRecommendations(r.Context(), customerID, limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to compute recommendations", err)
			return
		}
		resp.Ranked = ranked
		resp.Count = len(ranked)
	} else {
		cars, err := h.analytics.Recommendations(r.Context(), customerID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to compute recommendations", err)
			return
		}
		resp.Cars = cars
		resp.Count = len(cars)
	}

	respondSuccess(w, http.StatusOK, resp, start)
}

// CustomerRentals returns the customer's rental history from the graph.
func (h *Handler) CustomerRentals(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	customerID, verr := customerIDParam(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	history, err := h.analytics.CustomerHistory(r.Context(), customerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to load rental history", err)
		return
	}

	respondSuccess(w, http.StatusOK, CustomerRentalsResponse{
		CustomerID: customerID,
		Rentals:    history,
		Count:      len(history),
	}, start)
}

// Customer returns a customer record with its flags.
func (h *Handler) Customer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	customerID, verr := customerIDParam(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	c, err := h.analytics.Customer(r.Context(), customerID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Customer not found", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to load customer", err)
		return
	}

	respondSuccess(w, http.StatusOK, CustomerResponse{
		Customer:    *c,
		Premium:     h.analytics.IsPremium(customerID),
		Blacklisted: h.analytics.IsBlacklisted(customerID),
		Rentals:     len(h.analytics.Graph().Edges(customerID)),
	}, start)
}

// MarkPremium flags a customer as premium.
func (h *Handler) MarkPremium(w http.ResponseWriter, r *http.Request) {
	h.flagCustomer(w, r, h.analytics.MarkPremium)
}

// Blacklist flags a customer as blacklisted.
func (h *Handler) Blacklist(w http.ResponseWriter, r *http.Request) {
	h.flagCustomer(w, r, h.analytics.Blacklist)
}

func (h *Handler) flagCustomer(w http.ResponseWriter, r *http.Request, mark func(string)) {
	start := time.Now()

	customerID, verr := customerIDParam(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	mark(customerID)
	respondSuccess(w, http.StatusOK, CustomerFlagResponse{
		CustomerID:  customerID,
		Premium:     h.analytics.IsPremium(customerID),
		Blacklisted: h.analytics.IsBlacklisted(customerID),
	}, start)
}
