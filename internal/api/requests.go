// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/fleetgraph/internal/models"
	"github.com/tomtom215/fleetgraph/internal/validation"
)

// CreateCategoryRequest is the body of POST /api/v1/categories.
type CreateCategoryRequest struct {
	Name      string   `json:"name" validate:"required,category_name"`
	BasePrice *float64 `json:"base_price" validate:"required,gte=0,lte=10000"`
}

// SubmitRentalRequest is the body of POST /api/v1/rentals.
type SubmitRentalRequest struct {
	CustomerID string    `json:"customer_id" validate:"required,customer_id"`
	CarID      string    `json:"car_id" validate:"required,max=64"`
	RentTime   time.Time `json:"rent_time" validate:"required"`
	ReturnTime time.Time `json:"return_time" validate:"required,gtefield=RentTime"`
}

// Rental converts the request to a completed rental in UTC.
func (req *SubmitRentalRequest) Rental() models.Rental {
	return models.Rental{
		CustomerID: req.CustomerID,
		CarID:      req.CarID,
		RentTime:   req.RentTime.UTC(),
		ReturnTime: req.ReturnTime.UTC(),
	}
}

// limitParam reads ?limit=, falling back to def when absent. Non-numeric
// and out-of-range values are validation errors.
func limitParam(r *http.Request, def, max int) (int, *validation.RequestValidationError) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Atoi only fails on non-digits or on more than 18 digits.
		return 0, validation.ValidateVar("limit", raw, "number,max=18")
	}
	if verr := validation.ValidateVar("limit", n, fmt.Sprintf("gte=1,lte=%d", max)); verr != nil {
		return 0, verr
	}
	return n, nil
}

// boolParam reads a query flag. Anything strconv.ParseBool rejects is false.
func boolParam(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

// customerIDParam returns the validated {customerID} path parameter.
func customerIDParam(r *http.Request) (string, *validation.RequestValidationError) {
	id := chi.URLParam(r, "customerID")
	if verr := validation.ValidateVar("customer_id", id, "required,customer_id"); verr != nil {
		return "", verr
	}
	return id, nil
}

// categoryNameParam returns the validated {name} path parameter.
func categoryNameParam(r *http.Request) (string, *validation.RequestValidationError) {
	name := chi.URLParam(r, "name")
	if verr := validation.ValidateVar("name", name, "required,category_name"); verr != nil {
		return "", verr
	}
	return name, nil
}
