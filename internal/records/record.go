// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package records holds the schema-less row type returned by the stored
// procedures and the transforms applied to it before aggregation: column
// renaming, process scoping, time-window filtering, search-row decoration and
// row limiting.
//
// Every transform returns a new slice of new records; inputs are never
// modified, so one fetched result can feed several pipelines.
package records

import (
	"fmt"
	"maps"
)

// Record is one result row: column name to cell value. A cell is a number,
// string, time.Time, bool or nil. A missing key and a nil value both mean
// the cell is absent.
type Record map[string]interface{}

// Well-known column names.
const (
	// BatchColumn is the canonical (renamed) batch identifier column.
	BatchColumn = "배치번호"
	// TimeColumn is the canonical (renamed) timestamp column.
	TimeColumn = "시간"
	// RawBatchColumn is the batch identifier as returned by the database.
	RawBatchColumn = "CHARG"
	// ProcessCodeColumn is the process code in search rows.
	ProcessCodeColumn = "KTSCH"
)

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	return maps.Clone(r)
}

// Get returns a cell value; ok is false when the cell is absent.
func (r Record) Get(col string) (v interface{}, ok bool) {
	v, present := r[col]
	if !present || v == nil {
		return nil, false
	}
	return v, true
}

// String returns a cell coerced to string, or "" with ok=false when absent.
func (r Record) String(col string) (string, bool) {
	v, ok := r.Get(col)
	if !ok {
		return "", false
	}
	return CellString(v), true
}

// CellString coerces a cell value to its string form. nil becomes "".
func CellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// HasColumn reports whether any record carries a present value for col.
func HasColumn(rows []Record, col string) bool {
	for _, r := range rows {
		if _, ok := r.Get(col); ok {
			return true
		}
	}
	return false
}

// CloneAll copies every record.
func CloneAll(rows []Record) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
