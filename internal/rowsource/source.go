// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package rowsource executes the MES stored procedures and returns their
// result sets as schema-less records keyed by raw column name.
//
// Every procedure takes the same three parameters (@itemcode, @BatchNo,
// @ProcCode). @BatchNo may be empty, a single batch or a comma-separated list.
// Each call borrows one connection from the pool for its whole duration and
// returns it on every exit path.
package rowsource

import (
	"context"
	"fmt"

	"github.com/tomtom215/mesgate/internal/records"
)

// Procedure is a stored procedure name.
type Procedure string

const (
	ProcSearchPIMS     Procedure = "UP_AI_SearchProduct"
	ProcSearchLIMS     Procedure = "UP_AI_SearchProduct_QC"
	ProcFetchPIMSBasic Procedure = "Get_AIDATA"
	ProcFetchPIMSSmart Procedure = "Get_AIDATA_L23"
	ProcFetchLIMS      Procedure = "UP_LIMS_Get_AI_LIMSDATA"
)

// Parameter names, in call order.
const (
	ParamItemCode = "itemcode"
	ParamBatchNo  = "BatchNo"
	ParamProcCode = "ProcCode"
)

// Query carries the three procedure parameters.
type Query struct {
	ItemCode  string
	BatchSpec string
	ProcCode  string
}

// Source is the read side of the MES database.
type Source interface {
	// SearchPIMS lists batches and processes available for an item (PIMS).
	SearchPIMS(ctx context.Context, q Query) ([]records.Record, error)
	// SearchLIMS lists batches and processes available for an item (LIMS).
	SearchLIMS(ctx context.Context, q Query) ([]records.Record, error)
	// FetchPIMSBasic returns time-series rows for the legacy solid line.
	FetchPIMSBasic(ctx context.Context, q Query) ([]records.Record, error)
	// FetchPIMSSmart returns time-series rows for the smart solid line.
	FetchPIMSSmart(ctx context.Context, q Query) ([]records.Record, error)
	// FetchLIMS returns laboratory result rows.
	FetchLIMS(ctx context.Context, q Query) ([]records.Record, error)
	// Ping checks database reachability.
	Ping(ctx context.Context) error
}

// UpstreamError reports a failed stored procedure call: connection failure,
// execution failure, timeout or an open circuit breaker.
type UpstreamError struct {
	Procedure Procedure
	Err       error
}

func (e *UpstreamError) Error() string {
	if e.Procedure == "" {
		return fmt.Sprintf("database unavailable: %v", e.Err)
	}
	return fmt.Sprintf("stored procedure %s failed: %v", e.Procedure, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
