// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mesgate/internal/gateway"
	"github.com/tomtom215/mesgate/internal/mapping"
	"github.com/tomtom215/mesgate/internal/records"
	"github.com/tomtom215/mesgate/internal/rowsource"
	"github.com/tomtom215/mesgate/internal/stats"
)

// stubSource serves canned rows per procedure.
type stubSource struct {
	mu    sync.Mutex
	rows  map[rowsource.Procedure][]records.Record
	err   error
	calls []rowsource.Query
}

func newStubSource() *stubSource {
	return &stubSource{rows: make(map[rowsource.Procedure][]records.Record)}
}

func (s *stubSource) call(proc rowsource.Procedure, q rowsource.Query) ([]records.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, q)
	if s.err != nil {
		return nil, &rowsource.UpstreamError{Procedure: proc, Err: s.err}
	}
	return records.CloneAll(s.rows[proc]), nil
}

func (s *stubSource) SearchPIMS(_ context.Context, q rowsource.Query) ([]records.Record, error) {
	return s.call(rowsource.ProcSearchPIMS, q)
}

func (s *stubSource) SearchLIMS(_ context.Context, q rowsource.Query) ([]records.Record, error) {
	return s.call(rowsource.ProcSearchLIMS, q)
}

func (s *stubSource) FetchPIMSBasic(_ context.Context, q rowsource.Query) ([]records.Record, error) {
	return s.call(rowsource.ProcFetchPIMSBasic, q)
}

func (s *stubSource) FetchPIMSSmart(_ context.Context, q rowsource.Query) ([]records.Record, error) {
	return s.call(rowsource.ProcFetchPIMSSmart, q)
}

func (s *stubSource) FetchLIMS(_ context.Context, q rowsource.Query) ([]records.Record, error) {
	return s.call(rowsource.ProcFetchLIMS, q)
}

func (s *stubSource) Ping(context.Context) error {
	if s.err != nil {
		return &rowsource.UpstreamError{Err: s.err}
	}
	return nil
}

func (s *stubSource) queries() []rowsource.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rowsource.Query(nil), s.calls...)
}

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

// newTestServer returns the full router over src with rate limiting off.
func newTestServer(t *testing.T, src rowsource.Source) http.Handler {
	t.Helper()

	agg := &stats.Aggregator{Now: func() time.Time {
		return time.Date(2024, 5, 23, 12, 0, 0, 0, time.Local)
	}}
	gw := gateway.New(src, testRegistry(), agg, gateway.Options{})

	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(NewHandler(gw, "test"), cfg).SetupChi()
}

// postJSON sends body (a string is sent verbatim) and returns the recorder.
func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	default:
		var err error
		if payload, err = json.Marshal(b); err != nil {
			t.Fatalf("marshal request: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
