// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of the database.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests.
// Returns 200 OK only if the database answers; 503 otherwise. Mapping table
// sizes are reported but never affect readiness, since the gateway runs
// degraded without them.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:            "ready",
		Version:           h.version,
		Uptime:            time.Since(h.startTime).Seconds(),
		DatabaseConnected: true,
		MappingTables:     h.gw.MappingStats(),
	}

	status := http.StatusOK
	if err := h.gw.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		resp.Status = "not_ready"
		resp.DatabaseConnected = false
		resp.DatabaseError = err.Error()
	}

	respondJSON(w, status, resp)
}

// IPCStatus reports that the IPC feature is not yet available.
func (h *Handler) IPCStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, IPCStatusResponse{
		Success: true,
		Message: "IPC data service is under development and will open once complete.",
		Status:  "in_development",
	})
}
