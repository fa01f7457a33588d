// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Circuit breaker state values reported by CircuitBreakerState.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetgraph_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetgraph_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetgraph_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Entity Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetgraph_cache_hits_total",
			Help: "Total number of entity cache hits",
		},
		[]string{"cache"}, // "car", "customer"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetgraph_cache_misses_total",
			Help: "Total number of entity cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetgraph_cache_evictions_total",
			Help: "Total number of LRU evictions",
		},
		[]string{"cache"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetgraph_cache_entries",
			Help: "Current number of cached entities",
		},
		[]string{"cache"},
	)

	ResolveFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetgraph_resolve_failures_total",
			Help: "Entity lookups skipped because the store could not resolve the ID",
		},
		[]string{"entity", "reason"}, // reason: "not_found", "error"
	)

	// Graph Metrics
	GraphBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetgraph_graph_build_duration_seconds",
			Help:    "Duration of full rental graph builds",
			Buckets: prometheus.DefBuckets,
		},
	)

	GraphBuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetgraph_graph_build_errors_total",
			Help: "Graph builds that failed to load rental history",
		},
	)

	GraphLastBuild = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetgraph_graph_last_build_timestamp_seconds",
			Help: "Unix time of the last successful graph build",
		},
	)

	GraphNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetgraph_graph_nodes",
			Help: "Number of nodes in the rental graph",
		},
		[]string{"kind"}, // "customer", "car"
	)

	GraphRentals = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetgraph_graph_rentals",
			Help: "Number of rental relationships in the graph",
		},
	)

	RentalsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetgraph_rentals_skipped_total",
			Help: "History records left out of the graph",
		},
		[]string{"reason"}, // "active", "invalid"
	)

	// Event Metrics
	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetgraph_events_published_total",
			Help: "Rental events published",
		},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetgraph_events_processed_total",
			Help: "Rental events consumed",
		},
		[]string{"result"}, // "applied", "rejected", "failed"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetgraph_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetgraph_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a hit or a miss on the named entity cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordGraphBuild records a completed build and the resulting graph size.
func RecordGraphBuild(duration time.Duration, customers, cars, rentals int) {
	GraphBuildDuration.Observe(duration.Seconds())
	GraphLastBuild.Set(float64(time.Now().Unix()))
	UpdateGraphSize(customers, cars, rentals)
}

// UpdateGraphSize sets the graph gauges.
func UpdateGraphSize(customers, cars, rentals int) {
	GraphNodes.WithLabelValues("customer").Set(float64(customers))
	GraphNodes.WithLabelValues("car").Set(float64(cars))
	GraphRentals.Set(float64(rentals))
}
