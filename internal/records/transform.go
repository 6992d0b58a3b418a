// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package records

import (
	"slices"
)

// Rename replaces each column name k by tagMap[k] where a translation exists.
//
// When several columns land on the same name, a translated column beats an
// untranslated one, and among translated columns the one whose raw name sorts
// first wins. The result therefore does not depend on map iteration order.
func Rename(rows []Record, tagMap map[string]string) []Record {
	if len(tagMap) == 0 {
		return CloneAll(rows)
	}

	out := make([]Record, len(rows))
	for i, r := range rows {
		renamed := make(Record, len(r))
		var translated []string
		for k, v := range r {
			if _, ok := tagMap[k]; ok {
				translated = append(translated, k)
				continue
			}
			renamed[k] = v
		}

		slices.Sort(translated)
		claimed := make(map[string]bool, len(translated))
		for _, k := range translated {
			target := tagMap[k]
			if claimed[target] {
				continue
			}
			claimed[target] = true
			renamed[target] = r[k]
		}
		out[i] = renamed
	}
	return out
}

// ScopeFilter keeps only the columns in allowed, plus BatchColumn and
// TimeColumn which always survive. A nil allowed set means no scoping and
// returns copies unchanged.
func ScopeFilter(rows []Record, allowed map[string]struct{}) []Record {
	if allowed == nil {
		return CloneAll(rows)
	}

	out := make([]Record, len(rows))
	for i, r := range rows {
		kept := make(Record, len(allowed))
		for k, v := range r {
			if _, ok := allowed[k]; ok || k == BatchColumn || k == TimeColumn {
				kept[k] = v
			}
		}
		out[i] = kept
	}
	return out
}

// Row limit policy.
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// ClampLimit applies the row-limit policy: values <= 0 mean unlimited
// (returned as 0) and positive values are capped at MaxLimit.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return 0
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// Limit returns at most n rows; n <= 0 returns all rows.
func Limit(rows []Record, n int) []Record {
	if n <= 0 || n > len(rows) {
		n = len(rows)
	}
	return append(make([]Record, 0, n), rows[:n]...)
}
