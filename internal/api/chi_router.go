// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package api provides the HTTP surface of the gateway using the Chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/mesgate/internal/middleware"
)

// Router wires handlers and middleware into an http.Handler.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config uses the defaults.
func NewRouter(handler *Handler, cfg *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(chiMiddleware(middleware.AccessLog))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, ErrorResponse{Detail: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Detail: "Method Not Allowed"})
	})

	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit("health"))
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit("api"))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))

		r.Route("/pims", func(r chi.Router) {
			r.Post("/search-product", router.handler.PIMSSearch)
			r.Post("/get-data-basic", router.handler.PIMSDataBasic)
			r.Post("/get-data-l23", router.handler.PIMSDataL23)
		})

		r.Route("/pims-stats", func(r chi.Router) {
			r.Post("/search-product", router.handler.PIMSSearch)
			r.Post("/get-stats-basic", router.handler.PIMSStatsBasic)
			r.Post("/get-stats-l23", router.handler.PIMSStatsL23)
			r.Post("/get-chart-data", router.handler.PIMSChart)
		})

		r.Route("/lims", func(r chi.Router) {
			r.Post("/search-product", router.handler.LIMSSearch)
			r.Post("/get-lims-data", router.handler.LIMSData)
			r.Post("/get-chart-data", router.handler.LIMSChart)
		})

		r.Get("/ipc/status", router.handler.IPCStatus)
	})

	return r
}
