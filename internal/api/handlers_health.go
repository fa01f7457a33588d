// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package api

import (
	"net/http"
	"time"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 once the first graph build succeeded, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.analytics.Ready() {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "Rental graph has not been built yet", nil)
		return
	}

	data := map[string]interface{}{
		"ready": true,
	}
	if last := h.analytics.Stats().LastBuild; last != nil {
		data["last_build"] = last.BuiltAt
	}
	respondSuccess(w, http.StatusOK, data, start)
}
