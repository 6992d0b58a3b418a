// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package records

import (
	"reflect"
	"testing"
)

func searchRows() []Record {
	return []Record{
		{"CHARG": "B1", "KTSCH": "P1"},
		{"CHARG": "B1", "KTSCH": "P2"},
		{"CHARG": "B2", "KTSCH": "P9"},
		{"CHARG": nil, "KTSCH": "P1"},
	}
}

func TestBuildSearchResult(t *testing.T) {
	t.Parallel()

	display := map[string]string{"P1": "과립", "P2": "타정"}
	got := BuildSearchResult(searchRows(), display)

	wantBatches := []SearchBatch{{KBATCH: "B1"}, {KBATCH: "B2"}}
	if !reflect.DeepEqual(got.Batches, wantBatches) {
		t.Errorf("batches = %v, want %v", got.Batches, wantBatches)
	}
	wantProcs := []SearchProcess{
		{KTSCH: "P1", ProcessNameKor: "과립", ProcessDisplay: "P1 - 과립"},
		{KTSCH: "P2", ProcessNameKor: "타정", ProcessDisplay: "P2 - 타정"},
	}
	if !reflect.DeepEqual(got.Processes, wantProcs) {
		t.Errorf("processes = %v, want %v", got.Processes, wantProcs)
	}
}

// An unavailable process display file loads as an empty table. Search then
// degrades to listing every process under its code instead of dropping all
// of them.
func TestBuildSearchResultNoDisplayMap(t *testing.T) {
	t.Parallel()

	got := BuildSearchResult(searchRows(), nil)
	if len(got.Processes) != 3 {
		t.Fatalf("processes = %v, want all three codes", got.Processes)
	}
	if got.Processes[2].ProcessDisplay != "P9 - P9" {
		t.Errorf("fallback display = %q", got.Processes[2].ProcessDisplay)
	}
}

func TestBuildSearchResultEmpty(t *testing.T) {
	t.Parallel()

	got := BuildSearchResult(nil, map[string]string{"P1": "x"})
	if got.Batches == nil || got.Processes == nil {
		t.Error("empty result should carry non-nil slices")
	}
}

func TestDecorateSearchRows(t *testing.T) {
	t.Parallel()

	in := searchRows()
	got := DecorateSearchRows(in, map[string]string{"P1": "과립"})
	if len(got) != 2 {
		t.Fatalf("DecorateSearchRows kept %d rows, want 2", len(got))
	}
	for _, r := range got {
		if r[ProcessNameColumn] != "과립" {
			t.Errorf("row %v missing process name", r)
		}
		if _, ok := r["CHARG"]; !ok {
			t.Errorf("row %v lost its raw columns", r)
		}
	}
	if _, ok := in[0][ProcessNameColumn]; ok {
		t.Error("input was modified")
	}
}

func TestDecorateSearchRowsUnavailableDisplayMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		display map[string]string
	}{
		{"nil table", nil},
		{"empty table", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := DecorateSearchRows(searchRows(), tt.display)
			if len(got) != 4 {
				t.Fatalf("DecorateSearchRows kept %d rows, want all 4", len(got))
			}
			for _, r := range got {
				if r[ProcessNameColumn] != r["KTSCH"] {
					t.Errorf("row %v: name should fall back to the code", r)
				}
			}
		})
	}
}
