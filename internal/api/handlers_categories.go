// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/fleetgraph/internal/category"
	"github.com/tomtom215/fleetgraph/internal/models"
)

// CategoriesResponse is the data of GET /api/v1/categories.
type CategoriesResponse struct {
	Categories []category.Entry `json:"categories"`
	Count      int              `json:"count"`
}

// CategoryResponse describes one category and the next one up.
type CategoryResponse struct {
	Name             string  `json:"name"`
	BasePrice        float64 `json:"base_price"`
	SuggestedUpgrade string  `json:"suggested_upgrade,omitempty"`
}

// Categories lists categories cheapest first.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	all := h.analytics.Categories()
	respondSuccess(w, http.StatusOK, CategoriesResponse{Categories: all, Count: len(all)}, start)
}

// Category returns a category's base price and suggested upgrade.
func (h *Handler) Category(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	name, verr := categoryNameParam(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	resp, ok := h.categoryResponse(name)
	if !ok {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Category not found", nil)
		return
	}
	respondSuccess(w, http.StatusOK, resp, start)
}

// CreateCategory adds a category, or re-prices an existing one.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondAPIError(w, http.StatusBadRequest, &models.APIError{Code: ErrCodeValidation, Message: err.Error()})
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.analytics.AddCategory(req.Name, *req.BasePrice); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	resp, _ := h.categoryResponse(req.Name)
	respondSuccess(w, http.StatusCreated, resp, start)
}

// DeleteCategory removes a category.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	name, verr := categoryNameParam(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	if !h.analytics.RemoveCategory(name) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Category not found", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"deleted": name}, start)
}

func (h *Handler) categoryResponse(name string) (CategoryResponse, bool) {
	price, ok := h.analytics.CategoryBasePrice(name)
	if !ok {
		return CategoryResponse{}, false
	}
	upgrade, _ := h.analytics.SuggestedUpgrade(name)
	return CategoryResponse{Name: name, BasePrice: price, SuggestedUpgrade: upgrade}, true
}
