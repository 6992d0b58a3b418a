// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/mesgate/internal/records"
	"github.com/tomtom215/mesgate/internal/validation"
)

// Mode selects how PIMS batches are fetched.
type Mode string

const (
	ModeCommon     Mode = "common"
	ModeIndividual Mode = "individual"
)

// SearchParams selects an item's batches and processes.
type SearchParams struct {
	ItemCode string
	BatchNo  string
	ProcCode string
}

// TimeRange is one batch's window; empty ends are open.
type TimeRange struct {
	Start string
	End   string
}

// FetchParams selects PIMS rows.
type FetchParams struct {
	ItemCode string
	// BatchNo is a comma-separated batch list.
	BatchNo  string
	ProcCode string
	// Limit caps data results: <= 0 is unlimited, values above
	// records.MaxLimit are capped. Ignored by stats and charts.
	Limit int
	Mode  Mode
	// StartTime and EndTime bound common mode fetches.
	StartTime string
	EndTime   string
	// BatchTimeRanges bounds individual mode fetches per batch.
	BatchTimeRanges map[string]TimeRange
}

// LIMSParams selects LIMS rows.
type LIMSParams struct {
	ItemCode string
	BatchNo  string
	ProcCode string
}

// batchWindow is one fetch of a plan.
type batchWindow struct {
	batchSpec string
	window    records.TimeWindow
}

// fetchPlan lists the calls a PIMS fetch makes.
type fetchPlan struct {
	individual bool
	fetches    []batchWindow
}

// hasWindow reports whether any fetch is time-bounded.
func (p fetchPlan) hasWindow() bool {
	for _, f := range p.fetches {
		if !f.window.IsZero() {
			return true
		}
	}
	return false
}

// plan validates p and resolves its fetches. Individual mode applies only
// when batch time ranges are given; batches without a range fetch unbounded.
func (p FetchParams) plan() (fetchPlan, error) {
	if strings.TrimSpace(p.ItemCode) == "" {
		return fetchPlan{}, errors.New("itemcode is required")
	}

	mode := p.Mode
	if mode == "" {
		mode = ModeCommon
	}
	if mode != ModeCommon && mode != ModeIndividual {
		return fetchPlan{}, fmt.Errorf("mode must be %q or %q, got %q", ModeCommon, ModeIndividual, p.Mode)
	}

	batches := validation.SplitBatchList(p.BatchNo)

	if mode == ModeIndividual && len(p.BatchTimeRanges) > 0 {
		plan := fetchPlan{individual: true, fetches: make([]batchWindow, 0, len(batches))}
		for _, b := range batches {
			r := p.BatchTimeRanges[b]
			w, err := records.ParseWindow(r.Start, r.End)
			if err != nil {
				return fetchPlan{}, fmt.Errorf("batch %s: %w", b, err)
			}
			plan.fetches = append(plan.fetches, batchWindow{batchSpec: b, window: w})
		}
		return plan, nil
	}

	w, err := records.ParseWindow(p.StartTime, p.EndTime)
	if err != nil {
		return fetchPlan{}, err
	}
	return fetchPlan{fetches: []batchWindow{{batchSpec: strings.Join(batches, ","), window: w}}}, nil
}

func (p LIMSParams) validate() error {
	switch {
	case strings.TrimSpace(p.ItemCode) == "":
		return errors.New("itemcode is required")
	case strings.TrimSpace(p.BatchNo) == "":
		return errors.New("batch_no is required")
	case strings.TrimSpace(p.ProcCode) == "":
		return errors.New("proc_code is required")
	}
	if n := len(validation.SplitBatchList(p.BatchNo)); n > MaxLIMSBatches {
		return fmt.Errorf("batch_no lists %d batches, at most %d allowed", n, MaxLIMSBatches)
	}
	return nil
}

// MaxLIMSBatches bounds the batches of one LIMS request.
const MaxLIMSBatches = 20
