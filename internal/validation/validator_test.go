// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package validation

import (
	"strings"
	"sync"
	"testing"
)

type limsRequest struct {
	ItemCode string `json:"itemcode" validate:"required"`
	BatchNo  string `json:"batch_no" validate:"required,batchlist=3"`
	ProcCode string `json:"proc_code" validate:"required"`
}

type fetchRequest struct {
	ItemCode string `json:"itemcode" validate:"required"`
	Mode     string `json:"mode" validate:"omitempty,oneof=common individual"`
	Name     string `json:"name" validate:"omitempty,max=5"`
	Count    int    `json:"count" validate:"min=1"`
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	results := make(chan interface{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- GetValidator()
		}()
	}
	wg.Wait()
	close(results)

	first := GetValidator()
	for v := range results {
		if v != first {
			t.Fatal("GetValidator returned different instances")
		}
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantMsg   string
	}{
		{
			name:  "valid lims request",
			input: &limsRequest{ItemCode: "A100", BatchNo: "B1,B2", ProcCode: "P1"},
		},
		{
			name:      "missing itemcode uses json name",
			input:     &limsRequest{BatchNo: "B1", ProcCode: "P1"},
			wantField: "itemcode",
			wantMsg:   "itemcode is required",
		},
		{
			name:      "too many batches",
			input:     &limsRequest{ItemCode: "A", BatchNo: "B1, B2 ,B3,B4", ProcCode: "P"},
			wantField: "batch_no",
			wantMsg:   "batch_no must list at most 3 batches",
		},
		{
			name:  "empty entries are not counted",
			input: &limsRequest{ItemCode: "A", BatchNo: "B1,,B2, ,B3", ProcCode: "P"},
		},
		{
			name:      "bad mode",
			input:     &fetchRequest{ItemCode: "A", Mode: "batch", Count: 1},
			wantField: "mode",
			wantMsg:   "mode must be one of: common individual",
		},
		{
			name:      "string max",
			input:     &fetchRequest{ItemCode: "A", Name: "toolong", Count: 1},
			wantField: "name",
			wantMsg:   "name must be at most 5 characters",
		},
		{
			name:      "numeric min",
			input:     &fetchRequest{ItemCode: "A"},
			wantField: "count",
			wantMsg:   "count must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&limsRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(err.Errors()))
	}
	msg := err.Error()
	for _, field := range []string{"itemcode", "batch_no", "proc_code"} {
		if !strings.Contains(msg, field+" is required") {
			t.Errorf("combined message %q missing %s", msg, field)
		}
	}
}

func TestSplitBatchList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"B1", []string{"B1"}},
		{"B1, B2 ,,B3", []string{"B1", "B2", "B3"}},
	}
	for _, tt := range tests {
		got := SplitBatchList(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("SplitBatchList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
