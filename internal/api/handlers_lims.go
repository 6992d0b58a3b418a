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
)

// LIMSSearch lists the batches and processes of a product in LIMS.
func (h *Handler) LIMSSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.gw.SearchLIMS(r.Context(), req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, SearchResponse{
		Success: true,
		Message: "Product search succeeded (LIMS)",
		Data:    result,
	})
}

// LIMSData returns raw laboratory results with a data summary.
func (h *Handler) LIMSData(w http.ResponseWriter, r *http.Request) {
	var req LIMSRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.gw.FetchLIMS(r.Context(), req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, LIMSDataResponse{
		Success:      true,
		Message:      fmt.Sprintf("Loaded LIMS results (%d rows)", len(result.Rows)),
		Data:         result.Rows,
		TotalRecords: len(result.Rows),
		Summary:      result.Summary,
	})
}

// LIMSChart returns the chart payload of laboratory results. When no batch
// could be summarized it answers success:false with empty data.
func (h *Handler) LIMSChart(w http.ResponseWriter, r *http.Request) {
	var req LIMSRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	payload, err := h.gw.ChartLIMS(r.Context(), req.params())
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
		Message: "LIMS chart data ready",
		Data:    payload,
	})
}
