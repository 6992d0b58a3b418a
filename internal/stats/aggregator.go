// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package stats collapses fetched records into per-batch descriptive
// statistics. For every numeric variable V a summary carries five keys:
// V_평균 (mean), V_표준편차 (sample std), V_25%, V_50% and V_75%.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/mesgate/internal/logging"
	"github.com/tomtom215/mesgate/internal/metrics"
	"github.com/tomtom215/mesgate/internal/records"
)

// Statistic key suffixes.
const (
	SuffixMean = "_평균"
	SuffixStd  = "_표준편차"
	SuffixQ25  = "_25%"
	SuffixQ50  = "_50%"
	SuffixQ75  = "_75%"
)

// Provenance keys.
const (
	KeyRawRowCount   = "raw_row_count"
	KeyVariableCount = "variable_count"
	KeyProcessedAt   = "processed_at"
)

// SyntheticBatch names the single group used when no batch column exists.
const SyntheticBatch = "전체"

// ProcessedAtLayout formats KeyProcessedAt.
const ProcessedAtLayout = "2006-01-02 15:04:05"

// Summary is one batch's statistics, keyed like a record so it can be
// serialized as a flat JSON object.
type Summary map[string]interface{}

// Batch returns the summary's batch identifier.
func (s Summary) Batch() string {
	return records.CellString(s[records.BatchColumn])
}

// Aggregator computes per-batch summaries.
type Aggregator struct {
	// Now stamps KeyProcessedAt. Defaults to time.Now.
	Now func() time.Time
}

// NewAggregator returns an Aggregator using the wall clock.
func NewAggregator() *Aggregator {
	return &Aggregator{Now: time.Now}
}

func (a *Aggregator) now() time.Time {
	if a == nil || a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// Aggregate groups rows by batch and summarizes each group in first-seen
// order.
//
// The batch column is records.BatchColumn when any row carries it, otherwise
// records.RawBatchColumn. Rows without a value in that column are dropped.
// When neither column exists all rows form the single batch SyntheticBatch.
//
// Aggregate never fails: an internal panic is logged and yields an empty
// result.
func (a *Aggregator) Aggregate(rows []records.Record) (out []Summary) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Str("kind", "InternalAggregationError").
				Str("panic", fmt.Sprint(r)).
				Int("rows", len(rows)).
				Msg("Batch aggregation failed")
			metrics.RecordAggregation(time.Since(start), 0, true)
			out = []Summary{}
		}
	}()

	out = a.aggregate(rows)
	metrics.RecordAggregation(time.Since(start), len(out), false)
	return out
}

func (a *Aggregator) aggregate(rows []records.Record) []Summary {
	if len(rows) == 0 {
		return []Summary{}
	}

	batchCol := batchColumn(rows)
	if batchCol == "" {
		logging.Debug().Int("rows", len(rows)).Msg("No batch column, summarizing all rows as one batch")
		return []Summary{a.summarize(SyntheticBatch, rows, "")}
	}

	groups, order, dropped := groupBy(rows, batchCol)
	if dropped > 0 {
		logging.Warn().
			Str("column", batchCol).
			Int("dropped", dropped).
			Msg("Rows without a batch identifier excluded from aggregation")
		metrics.RecordDropped("missing_batch", dropped)
	}

	out := make([]Summary, 0, len(order))
	for _, b := range order {
		out = append(out, a.summarize(b, groups[b], batchCol))
	}
	return out
}

// batchColumn picks the grouping column, or "" when no row has either key.
// A key holding only nil values still selects the column; those rows are
// dropped by groupBy.
func batchColumn(rows []records.Record) string {
	switch {
	case hasKey(rows, records.BatchColumn):
		return records.BatchColumn
	case hasKey(rows, records.RawBatchColumn):
		return records.RawBatchColumn
	default:
		return ""
	}
}

func hasKey(rows []records.Record, col string) bool {
	for _, r := range rows {
		if _, ok := r[col]; ok {
			return true
		}
	}
	return false
}

// groupBy partitions rows by the string form of col, keeping first-seen
// order. Grouping is case and whitespace sensitive.
func groupBy(rows []records.Record, col string) (map[string][]records.Record, []string, int) {
	groups := make(map[string][]records.Record)
	var order []string
	dropped := 0
	for _, r := range rows {
		id, ok := r.String(col)
		if !ok {
			dropped++
			continue
		}
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], r)
	}
	return groups, order, dropped
}

// summarize computes one batch's summary. skip is excluded from the
// variables.
func (a *Aggregator) summarize(batch string, rows []records.Record, skip string) Summary {
	values := numericColumns(rows, skip)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	s := make(Summary, len(names)*5+4)
	for _, name := range names {
		d := Describe(values[name])
		s[name+SuffixMean] = orNil(d.Mean)
		s[name+SuffixStd] = orNil(d.Std)
		s[name+SuffixQ25] = orNil(d.Q25)
		s[name+SuffixQ50] = orNil(d.Q50)
		s[name+SuffixQ75] = orNil(d.Q75)
	}

	s[KeyRawRowCount] = len(rows)
	s[KeyVariableCount] = len(names)
	s[KeyProcessedAt] = a.now().Format(ProcessedAtLayout)
	s[records.BatchColumn] = batch
	return s
}

// numericColumns collects the finite numeric values of every column that has
// at least one, excluding skip.
func numericColumns(rows []records.Record, skip string) map[string][]float64 {
	values := make(map[string][]float64)
	for _, r := range rows {
		for k, v := range r {
			if k == skip || k == records.BatchColumn {
				continue
			}
			if f, ok := Numeric(v); ok {
				values[k] = append(values[k], f)
			}
		}
	}
	return values
}

// orNil unwraps p so JSON encodes an absent statistic as null.
func orNil(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// FormatForDisplay prepares a summary for presentation. Values are already
// rounded, so this is currently a copy.
func FormatForDisplay(s Summary) Summary {
	out := make(Summary, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// DataSummary describes a raw LIMS result set.
type DataSummary struct {
	TotalRows     int      `json:"total_rows"`
	BatchCount    int      `json:"batch_count"`
	VariableCount int      `json:"variable_count"`
	Batches       []string `json:"batches"`
}

// Summarize counts rows, distinct batches (first-seen order, from
// records.BatchColumn or records.RawBatchColumn) and columns holding numeric
// values.
func Summarize(rows []records.Record) DataSummary {
	ds := DataSummary{TotalRows: len(rows), Batches: []string{}}

	seen := make(map[string]bool)
	numeric := make(map[string]bool)
	for _, r := range rows {
		id, ok := r.String(records.BatchColumn)
		if !ok || id == "" {
			id, ok = r.String(records.RawBatchColumn)
		}
		if ok && id != "" && !seen[id] {
			seen[id] = true
			ds.Batches = append(ds.Batches, id)
		}
		for k, v := range r {
			if _, ok := Numeric(v); ok {
				numeric[k] = true
			}
		}
	}
	ds.BatchCount = len(ds.Batches)
	ds.VariableCount = len(numeric)
	return ds
}
