// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/mesgate/internal/mapping"
	"github.com/tomtom215/mesgate/internal/records"
	"github.com/tomtom215/mesgate/internal/rowsource"
	"github.com/tomtom215/mesgate/internal/stats"
)

// fakeSource serves canned rows per procedure. When byBatch is set for a
// procedure, rows are looked up by the query's batch spec.
type fakeSource struct {
	mu      sync.Mutex
	rows    map[rowsource.Procedure][]records.Record
	byBatch map[rowsource.Procedure]map[string][]records.Record
	errs    map[string]error // keyed by batch spec
	err     error
	calls   []rowsource.Query
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		rows:    make(map[rowsource.Procedure][]records.Record),
		byBatch: make(map[rowsource.Procedure]map[string][]records.Record),
		errs:    make(map[string]error),
	}
}

func (f *fakeSource) call(proc rowsource.Procedure, q rowsource.Query) ([]records.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)

	if f.err != nil {
		return nil, &rowsource.UpstreamError{Procedure: proc, Err: f.err}
	}
	if err, ok := f.errs[q.BatchSpec]; ok {
		return nil, &rowsource.UpstreamError{Procedure: proc, Err: err}
	}
	if m, ok := f.byBatch[proc]; ok {
		return records.CloneAll(m[q.BatchSpec]), nil
	}
	return records.CloneAll(f.rows[proc]), nil
}

func (f *fakeSource) SearchPIMS(_ context.Context, q rowsource.Query) ([]records.Record, error) {
	return f.call(rowsource.ProcSearchPIMS, q)
}

func (f *fakeSource) SearchLIMS(_ context.Context, q rowsource.Query) ([]records.Record, error) {
	return f.call(rowsource.ProcSearchLIMS, q)
}

func (f *fakeSource) FetchPIMSBasic(_ context.Context, q rowsource.Query) ([]records.Record, error) {
	return f.call(rowsource.ProcFetchPIMSBasic, q)
}

func (f *fakeSource) FetchPIMSSmart(_ context.Context, q rowsource.Query) ([]records.Record, error) {
	return f.call(rowsource.ProcFetchPIMSSmart, q)
}

func (f *fakeSource) FetchLIMS(_ context.Context, q rowsource.Query) ([]records.Record, error) {
	return f.call(rowsource.ProcFetchLIMS, q)
}

func (f *fakeSource) Ping(context.Context) error {
	if f.err != nil {
		return &rowsource.UpstreamError{Err: f.err}
	}
	return nil
}

func (f *fakeSource) queries() []rowsource.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rowsource.Query(nil), f.calls...)
}

var errDown = errors.New("connection refused")

func testRegistry() *mapping.Registry {
	return mapping.New(mapping.Tables{
		TagMap: map[string]string{
			"CHARG": "배치번호",
			"TIME":  "시간",
		},
		PIMSProcesses: map[string]string{"AB1": "과립"},
		LIMSProcesses: map[string]string{"AK7": "정제"},
		ProcessTypes: map[string]string{
			"AB1": "granulation",
			"AK7": "assay",
		},
		ProcessVariables: map[string][]string{
			"granulation": {"X"},
			"assay":       {"pH"},
		},
	}, mapping.Options{SystemColumns: []string{"CHARG", "TIME"}})
}

func testGateway(src rowsource.Source, reg *mapping.Registry) *Gateway {
	agg := &stats.Aggregator{Now: func() time.Time {
		return time.Date(2024, 5, 23, 12, 0, 0, 0, time.Local)
	}}
	return New(src, reg, agg, Options{})
}
