// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package records

// Columns added to search rows.
const (
	ProcessNameColumn    = "PROCESS_NAME_KOR"
	ProcessDisplayColumn = "process_display"
)

// SearchBatch is one batch offered by a search.
type SearchBatch struct {
	KBATCH string `json:"KBATCH"`
}

// SearchProcess is one process offered by a search.
type SearchProcess struct {
	KTSCH          string `json:"KTSCH"`
	ProcessNameKor string `json:"PROCESS_NAME_KOR"`
	ProcessDisplay string `json:"process_display"`
}

// SearchResult lists the batches and processes available for an item.
type SearchResult struct {
	Batches   []SearchBatch   `json:"batches"`
	Processes []SearchProcess `json:"processes"`
}

// DecorateSearchRows adds ProcessNameColumn from the display map and drops
// rows whose process code is not in it. When the display map is empty (the
// mapping file was unavailable) every row is kept and the code doubles as
// the name. Column names are not renamed.
func DecorateSearchRows(rows []Record, display map[string]string) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		code, _ := r.String(ProcessCodeColumn)

		var name string
		if len(display) == 0 {
			name = code
		} else {
			var ok bool
			if name, ok = display[code]; !ok {
				continue
			}
		}

		d := r.Clone()
		d[ProcessNameColumn] = name
		out = append(out, d)
	}
	return out
}

// BuildSearchResult collects distinct batches (from every row's
// RawBatchColumn) and distinct processes (from the decorated rows), both in
// first-seen order.
func BuildSearchResult(rows []Record, display map[string]string) SearchResult {
	res := SearchResult{
		Batches:   []SearchBatch{},
		Processes: []SearchProcess{},
	}

	seenBatch := make(map[string]bool)
	for _, r := range rows {
		b, ok := r.String(RawBatchColumn)
		if !ok || b == "" || seenBatch[b] {
			continue
		}
		seenBatch[b] = true
		res.Batches = append(res.Batches, SearchBatch{KBATCH: b})
	}

	seenProc := make(map[string]bool)
	for _, r := range DecorateSearchRows(rows, display) {
		code, ok := r.String(ProcessCodeColumn)
		if !ok || code == "" || seenProc[code] {
			continue
		}
		seenProc[code] = true
		name := CellString(r[ProcessNameColumn])
		res.Processes = append(res.Processes, SearchProcess{
			KTSCH:          code,
			ProcessNameKor: name,
			ProcessDisplay: code + " - " + name,
		})
	}

	return res
}
