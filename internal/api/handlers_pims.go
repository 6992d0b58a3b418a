// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/mesgate/internal/gateway"
	"github.com/tomtom215/mesgate/internal/records"
)

// productLabels name the production lines in response messages.
var productLabels = map[gateway.ProductType]string{
	gateway.ProductBasic: "legacy solid",
	gateway.ProductL23:   "smart solid",
}

// PIMSSearch lists the batches and processes of a product in PIMS.
// It also serves /api/pims-stats/search-product.
func (h *Handler) PIMSSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.gw.SearchPIMS(r.Context(), req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, SearchResponse{
		Success: true,
		Message: "Product search succeeded",
		Data:    result,
	})
}

// PIMSDataBasic returns legacy solid line rows.
func (h *Handler) PIMSDataBasic(w http.ResponseWriter, r *http.Request) {
	h.pimsData(w, r, gateway.ProductBasic)
}

// PIMSDataL23 returns smart solid line rows.
func (h *Handler) PIMSDataL23(w http.ResponseWriter, r *http.Request) {
	h.pimsData(w, r, gateway.ProductL23)
}

func (h *Handler) pimsData(w http.ResponseWriter, r *http.Request, pt gateway.ProductType) {
	var req PIMSRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	params := req.params()
	rows, err := h.gw.FetchPIMS(r.Context(), pt, params)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{
		Success:    true,
		Message:    fmt.Sprintf("Loaded %s data (%d rows)", productLabels[pt], len(rows)),
		Data:       rows,
		TotalCount: len(rows),
		Limit:      records.ClampLimit(params.Limit),
	})
}

// PIMSStatsBasic returns per-batch statistics for the legacy solid line.
func (h *Handler) PIMSStatsBasic(w http.ResponseWriter, r *http.Request) {
	h.pimsStats(w, r, gateway.ProductBasic)
}

// PIMSStatsL23 returns per-batch statistics for the smart solid line.
func (h *Handler) PIMSStatsL23(w http.ResponseWriter, r *http.Request) {
	h.pimsStats(w, r, gateway.ProductL23)
}

func (h *Handler) pimsStats(w http.ResponseWriter, r *http.Request, pt gateway.ProductType) {
	var req PIMSRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.gw.StatsPIMS(r.Context(), pt, req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, StatsResponse{
		Success:           true,
		Message:           fmt.Sprintf("Summarized %s data (%d batches)", productLabels[pt], len(result.Summaries)),
		Data:              result.Summaries,
		TotalBatches:      len(result.Summaries),
		OriginalDataCount: result.OriginalCount,
	})
}

// PIMSChart returns the chart payload for a product type. An unsupported
// product type or an empty summary answers success:false with empty data.
func (h *Handler) PIMSChart(w http.ResponseWriter, r *http.Request) {
	var req PIMSRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	pt, err := gateway.ParseProductType(req.ProductType)
	if err != nil {
		respondJSON(w, http.StatusOK, ChartResponse{
			Message: "Unsupported product type (expected basic or l23)",
			Data:    struct{}{},
		})
		return
	}

	payload, err := h.gw.ChartPIMS(r.Context(), pt, req.params())
	switch {
	case errors.Is(err, gateway.ErrNoChartData):
		respondJSON(w, http.StatusOK, ChartResponse{
			Message: "No statistics available for the chart",
			Data:    struct{}{},
		})
		return
	case err != nil:
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ChartResponse{
		Success: true,
		Message: fmt.Sprintf("Chart data ready: %d variables, %d batches", len(payload.Variables), len(payload.Batches)),
		Data:    payload,
	})
}
