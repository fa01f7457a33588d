// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package category maintains the price-ordered list of car categories used
// for base-price lookup and upgrade suggestions.
package category

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// ErrInvalidCategory is returned for an empty name or a negative/NaN price.
var ErrInvalidCategory = errors.New("invalid category")

// Entry is one category and its base hourly price.
type Entry struct {
	Name      string  `json:"name"`
	BasePrice float64 `json:"base_price"`
}

// DefaultCategories returns the stock tiers, cheapest first.
func DefaultCategories() []Entry {
	return []Entry{
		{Name: "Economy", BasePrice: 8.0},
		{Name: "Standard", BasePrice: 10.0},
		{Name: "Premium", BasePrice: 15.0},
		{Name: "Luxury", BasePrice: 25.0},
	}
}

// List keeps entries sorted non-decreasing by BasePrice with unique names.
// Entries with equal prices keep insertion order. Safe for concurrent use.
type List struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewList returns an empty List.
func NewList() *List {
	return &List{}
}

// NewListFrom builds a List by adding each entry in order.
func NewListFrom(entries []Entry) (*List, error) {
	l := NewList()
	for _, e := range entries {
		if err := l.Add(e.Name, e.BasePrice); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add inserts name at its price position, after any entries of equal price.
// An existing name is moved to the position matching its new price.
func (l *List) Add(name string, basePrice float64) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCategory)
	}
	if math.IsNaN(basePrice) || math.IsInf(basePrice, 0) || basePrice < 0 {
		return fmt.Errorf("%w: price %v for %q", ErrInvalidCategory, basePrice, name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(name); i >= 0 {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}

	// First index whose price is strictly greater keeps equal prices in insertion order.
	pos := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].BasePrice > basePrice
	})
	l.entries = append(l.entries, Entry{})
	copy(l.entries[pos+1:], l.entries[pos:])
	l.entries[pos] = Entry{Name: name, BasePrice: basePrice}
	return nil
}

// BasePrice returns the price for name.
func (l *List) BasePrice(name string) (float64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.indexOf(name); i >= 0 {
		return l.entries[i].BasePrice, true
	}
	return 0, false
}

// NextHigher returns the immediate successor of name in price order, even
// when it shares the same price. It reports false when name is unknown or last.
func (l *List) NextHigher(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexOf(name)
	if i < 0 || i == len(l.entries)-1 {
		return "", false
	}
	return l.entries[i+1].Name, true
}

// All returns a copy of the entries in ascending price order.
func (l *List) All() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Names returns the category names in ascending price order.
func (l *List) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = e.Name
	}
	return names
}

// Remove deletes name and reports whether it was present.
func (l *List) Remove(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(name)
	if i < 0 {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return true
}

// Contains reports whether name is present.
func (l *List) Contains(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexOf(name) >= 0
}

// Len returns the number of categories.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// IsEmpty reports whether the list has no categories.
func (l *List) IsEmpty() bool {
	return l.Len() == 0
}

// indexOf is a linear scan; category lists are a handful of tiers.
func (l *List) indexOf(name string) int {
	for i := range l.entries {
		if l.entries[i].Name == name {
			return i
		}
	}
	return -1
}
