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

// GraphStatsResponse is the data of GET /api/v1/graph/stats.
type GraphStatsResponse struct {
	analytics.Stats
	Breakers map[string]string `json:"breakers,omitempty"`
	Uptime   float64           `json:"uptime_seconds"`
}

// GraphStats returns graph size, cache and build statistics.
func (h *Handler) GraphStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	resp := GraphStatsResponse{
		Stats:  h.analytics.Stats(),
		Uptime: time.Since(h.startTime).Seconds(),
	}
	if h.breakers != nil {
		resp.Breakers = h.breakers.BreakerStates()
	}
	respondSuccess(w, http.StatusOK, resp, start)
}

// GraphRebuild rebuilds the graph from the store synchronously. On failure
// the previous graph stays live and 503 is returned.
func (h *Handler) GraphRebuild(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	res, err := h.analytics.Build(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "Graph rebuild failed", err)
		return
	}
	respondSuccess(w, http.StatusOK, res, start)
}
