// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package api

import (
	"time"

	"github.com/tomtom215/mesgate/internal/gateway"
)

// readyTimeout bounds the database ping of the readiness probe.
const readyTimeout = 5 * time.Second

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_pims.go: PIMS search, data, stats and chart endpoints
//   - handlers_lims.go: LIMS search, data and chart endpoints
//   - handlers_health.go: health probes and the IPC status endpoint
type Handler struct {
	gw        *gateway.Gateway
	version   string
	startTime time.Time
}

// NewHandler creates a handler serving the given gateway.
//
// Example:
//
//	handler := api.NewHandler(gw, cfg.App.Version)
//	router := api.NewRouter(handler, api.ChiMiddlewareConfigFromServer(cfg.Server))
//	http.ListenAndServe(cfg.Server.Addr(), router.SetupChi())
func NewHandler(gw *gateway.Gateway, version string) *Handler {
	return &Handler{
		gw:        gw,
		version:   version,
		startTime: time.Now(),
	}
}
