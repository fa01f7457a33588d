// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package services provides suture.Service wrappers for fleetgraph's
// long-running components. Each wrapper depends on a small interface so it
// can be tested without the real component.
package services
