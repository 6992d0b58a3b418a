// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package rowsource

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mesgate/internal/config"
	"github.com/tomtom215/mesgate/internal/records"
)

func testBreakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		Enabled:     true,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Hour,
	}
}

func TestBreakerDisabledPassesThrough(t *testing.T) {
	t.Parallel()

	b := newBreaker(config.BreakerConfig{Enabled: false})
	if b != nil {
		t.Fatal("disabled breaker should be nil")
	}
	if b.state() != "disabled" {
		t.Errorf("state() = %q, want disabled", b.state())
	}

	rows, err := b.execute(func() ([]records.Record, error) {
		return []records.Record{{"A": 1}}, nil
	})
	if err != nil || len(rows) != 1 {
		t.Errorf("execute() = %v, %v", rows, err)
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	b := newBreaker(testBreakerConfig())
	fail := func() ([]records.Record, error) { return nil, errors.New("login failed") }

	// Fewer than 10 requests never trip.
	for i := 0; i < 9; i++ {
		_, _ = b.execute(fail)
	}
	if b.state() != "closed" {
		t.Fatalf("state after 9 failures = %q, want closed", b.state())
	}

	_, _ = b.execute(fail)
	if b.state() != "open" {
		t.Fatalf("state after 10 failures = %q, want open", b.state())
	}

	called := false
	_, err := b.execute(func() ([]records.Record, error) {
		called = true
		return nil, nil
	})
	if called {
		t.Error("open breaker must not call through")
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want ErrOpenState", err)
	}
	if classify(err) != "breaker_open" {
		t.Errorf("classify(open) = %q", classify(err))
	}
}

func TestBreakerStaysClosedBelowRatio(t *testing.T) {
	t.Parallel()

	b := newBreaker(testBreakerConfig())
	for i := 0; i < 20; i++ {
		fn := func() ([]records.Record, error) { return nil, nil }
		if i%2 == 0 {
			fn = func() ([]records.Record, error) { return nil, fmt.Errorf("deadlock victim %d", i) }
		}
		_, _ = b.execute(fn)
	}
	if b.state() != "closed" {
		t.Errorf("state at 50%% failures = %q, want closed", b.state())
	}
}

func TestBreakerIgnoresCanceledRequests(t *testing.T) {
	t.Parallel()

	b := newBreaker(testBreakerConfig())
	for i := 0; i < 15; i++ {
		_, _ = b.execute(func() ([]records.Record, error) { return nil, context.Canceled })
	}
	if b.state() != "closed" {
		t.Errorf("state after canceled requests = %q, want closed", b.state())
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "timeout"},
		{context.Canceled, "canceled"},
		{gobreaker.ErrTooManyRequests, "breaker_open"},
		{errors.New("mssql: Invalid object name"), "database"},
	}
	for _, tt := range tests {
		if got := classify(tt.err); got != tt.want {
			t.Errorf("classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestUpstreamError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := error(&UpstreamError{Procedure: ProcFetchLIMS, Err: cause})

	if !errors.Is(err, cause) {
		t.Error("UpstreamError should unwrap to its cause")
	}
	var ue *UpstreamError
	if !errors.As(fmt.Errorf("fetch: %w", err), &ue) || ue.Procedure != ProcFetchLIMS {
		t.Error("errors.As should find UpstreamError through wrapping")
	}
	if got := err.Error(); got != "stored procedure UP_LIMS_Get_AI_LIMSDATA failed: connection reset" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&UpstreamError{Err: cause}).Error(); got != "database unavailable: connection reset" {
		t.Errorf("Error() without procedure = %q", got)
	}
}
