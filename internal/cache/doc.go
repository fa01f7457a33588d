// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package cache provides the bounded, thread-safe LRU used to memoize car and
// customer lookups in front of the store.
//
//	cars, err := cache.NewLRU[string, models.Car](100)
//	cars.Put("C1", car)
//	if c, ok := cars.Get("C1"); ok { ... }
//
// Capacity must be at least one. Get refreshes an entry's recency; Put on a
// full cache evicts the least recently used entry and calls the OnEvict hook.
package cache
