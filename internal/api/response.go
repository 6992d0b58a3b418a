// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package api

import (
	"github.com/tomtom215/mesgate/internal/records"
	"github.com/tomtom215/mesgate/internal/stats"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Detail is "<Kind>: <message>" for gateway failures.
	Detail string `json:"detail"`
}

// SearchResponse answers the search-product endpoints.
type SearchResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    records.SearchResult `json:"data"`
}

// DataResponse answers the PIMS data endpoints.
type DataResponse struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       []records.Record `json:"data"`
	TotalCount int              `json:"total_count"`
	// Limit is the effective row limit; 0 means unlimited.
	Limit int `json:"limit"`
}

// StatsResponse answers the PIMS batch summary endpoints.
type StatsResponse struct {
	Success           bool            `json:"success"`
	Message           string          `json:"message"`
	Data              []stats.Summary `json:"data"`
	TotalBatches      int             `json:"total_batches"`
	OriginalDataCount int             `json:"original_data_count"`
}

// ChartResponse answers the chart endpoints. Data is a chart.Payload, or an
// empty object when Success is false.
type ChartResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// LIMSDataResponse answers the LIMS data endpoint.
type LIMSDataResponse struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Data         []records.Record  `json:"data"`
	TotalRecords int               `json:"total_records"`
	Summary      stats.DataSummary `json:"summary"`
}

// IPCStatusResponse is the fixed IPC status payload.
type IPCStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// HealthResponse answers the health endpoints.
type HealthResponse struct {
	Status            string         `json:"status"`
	Version           string         `json:"version,omitempty"`
	Uptime            float64        `json:"uptime_seconds"`
	DatabaseConnected bool           `json:"database_connected"`
	DatabaseError     string         `json:"database_error,omitempty"`
	MappingTables     map[string]int `json:"mapping_tables,omitempty"`
}
