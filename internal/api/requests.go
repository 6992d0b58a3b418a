// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package api

import (
	"github.com/tomtom215/mesgate/internal/gateway"
	"github.com/tomtom215/mesgate/internal/records"
)

// SearchRequest is the body of the search-product endpoints.
//
// Fields:
//   - ItemCode: product item code (required)
//   - BatchNo: optional batch filter, comma-separated
//   - ProcCode: optional process filter
type SearchRequest struct {
	ItemCode string `json:"itemcode" validate:"required,max=50"`
	BatchNo  string `json:"batch_no" validate:"max=4000"`
	ProcCode string `json:"proc_code" validate:"max=50"`
}

func (r SearchRequest) params() gateway.SearchParams {
	return gateway.SearchParams{ItemCode: r.ItemCode, BatchNo: r.BatchNo, ProcCode: r.ProcCode}
}

// TimeRangeRequest is one batch's window in individual mode. Null or
// missing ends are open.
type TimeRangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PIMSRequest is the body of the PIMS data, stats and chart endpoints.
//
// Fields:
//   - Limit: row cap for data endpoints (default 50, <= 0 unlimited, capped at 1000)
//   - Mode: "common" (default) or "individual"
//   - StartTime, EndTime: common window, "YYYY-MM-DD HH:MM[:SS]"
//   - BatchTimeRanges: per-batch windows used in individual mode
//   - ProductType: "basic" or "l23", chart endpoint only
type PIMSRequest struct {
	ItemCode        string                      `json:"itemcode" validate:"required,max=50"`
	BatchNo         string                      `json:"batch_no" validate:"max=4000"`
	ProcCode        string                      `json:"proc_code" validate:"max=50"`
	Limit           *int                        `json:"limit"`
	Mode            string                      `json:"mode" validate:"omitempty,oneof=common individual"`
	StartTime       string                      `json:"start_time"`
	EndTime         string                      `json:"end_time"`
	BatchTimeRanges map[string]TimeRangeRequest `json:"batch_time_ranges"`
	ProductType     string                      `json:"product_type"`
}

// limit returns the requested limit or records.DefaultLimit when omitted.
func (r PIMSRequest) limit() int {
	if r.Limit == nil {
		return records.DefaultLimit
	}
	return *r.Limit
}

func (r PIMSRequest) params() gateway.FetchParams {
	p := gateway.FetchParams{
		ItemCode:  r.ItemCode,
		BatchNo:   r.BatchNo,
		ProcCode:  r.ProcCode,
		Limit:     r.limit(),
		Mode:      gateway.Mode(r.Mode),
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
	if len(r.BatchTimeRanges) > 0 {
		p.BatchTimeRanges = make(map[string]gateway.TimeRange, len(r.BatchTimeRanges))
		for batch, tr := range r.BatchTimeRanges {
			p.BatchTimeRanges[batch] = gateway.TimeRange{Start: tr.Start, End: tr.End}
		}
	}
	return p
}

// LIMSRequest is the body of the LIMS data and chart endpoints. All fields
// are required and at most gateway.MaxLIMSBatches batches may be listed.
type LIMSRequest struct {
	ItemCode string `json:"itemcode" validate:"required,max=50"`
	BatchNo  string `json:"batch_no" validate:"required,batchlist=20"`
	ProcCode string `json:"proc_code" validate:"required,max=50"`
}

func (r LIMSRequest) params() gateway.LIMSParams {
	return gateway.LIMSParams{ItemCode: r.ItemCode, BatchNo: r.BatchNo, ProcCode: r.ProcCode}
}
