// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package analytics

import (
	"github.com/tomtom215/fleetgraph/internal/category"
)

// CategoryBasePrice returns the hourly base price of a category.
func (s *Service) CategoryBasePrice(name string) (float64, bool) {
	return s.categories.BasePrice(name)
}

// SuggestedUpgrade returns the category listed right after name.
func (s *Service) SuggestedUpgrade(name string) (string, bool) {
	return s.categories.NextHigher(name)
}

// AddCategory adds or re-prices a category.
func (s *Service) AddCategory(name string, basePrice float64) error {
	return s.categories.Add(name, basePrice)
}

// RemoveCategory deletes a category and reports whether it existed.
func (s *Service) RemoveCategory(name string) bool {
	return s.categories.Remove(name)
}

// Categories returns every category, cheapest first.
func (s *Service) Categories() []category.Entry {
	return s.categories.All()
}
