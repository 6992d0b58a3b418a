// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package rowsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb" // registers the sqlserver and mssql drivers

	"github.com/tomtom215/mesgate/internal/config"
	"github.com/tomtom215/mesgate/internal/logging"
	"github.com/tomtom215/mesgate/internal/metrics"
	"github.com/tomtom215/mesgate/internal/records"
)

// MSSQL is the SQL Server implementation of Source.
type MSSQL struct {
	db           *sqlx.DB
	breaker      *breaker
	queryTimeout time.Duration
}

var _ Source = (*MSSQL)(nil)

// Open creates the connection pool. The pool connects lazily, so Open only
// fails on invalid configuration; use Ping to check reachability.
func Open(cfg config.DatabaseConfig, appName string) (*MSSQL, error) {
	dsn := BuildDSN(cfg, appName)

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logging.Info().
		Str("dsn", redactDSN(dsn)).
		Int("max_open_conns", cfg.MaxOpenConns).
		Bool("breaker", cfg.Breaker.Enabled).
		Msg("SQL Server pool configured")

	return &MSSQL{
		db:           db,
		breaker:      newBreaker(cfg.Breaker),
		queryTimeout: cfg.QueryTimeout,
	}, nil
}

// Close closes the pool.
func (m *MSSQL) Close() error {
	return m.db.Close()
}

// SearchPIMS executes UP_AI_SearchProduct.
func (m *MSSQL) SearchPIMS(ctx context.Context, q Query) ([]records.Record, error) {
	return m.call(ctx, ProcSearchPIMS, q)
}

// SearchLIMS executes UP_AI_SearchProduct_QC.
func (m *MSSQL) SearchLIMS(ctx context.Context, q Query) ([]records.Record, error) {
	return m.call(ctx, ProcSearchLIMS, q)
}

// FetchPIMSBasic executes Get_AIDATA.
func (m *MSSQL) FetchPIMSBasic(ctx context.Context, q Query) ([]records.Record, error) {
	return m.call(ctx, ProcFetchPIMSBasic, q)
}

// FetchPIMSSmart executes Get_AIDATA_L23.
func (m *MSSQL) FetchPIMSSmart(ctx context.Context, q Query) ([]records.Record, error) {
	return m.call(ctx, ProcFetchPIMSSmart, q)
}

// FetchLIMS executes UP_LIMS_Get_AI_LIMSDATA.
func (m *MSSQL) FetchLIMS(ctx context.Context, q Query) ([]records.Record, error) {
	return m.call(ctx, ProcFetchLIMS, q)
}

// Ping checks that a connection can be established, through the breaker so
// an open circuit reports as not ready.
func (m *MSSQL) Ping(ctx context.Context) error {
	_, err := m.breaker.execute(func() ([]records.Record, error) {
		return nil, m.db.PingContext(ctx)
	})
	if err != nil {
		return &UpstreamError{Err: err}
	}
	return nil
}

// BreakerState reports the circuit breaker state.
func (m *MSSQL) BreakerState() string {
	return m.breaker.state()
}

// Stats reports connection pool statistics.
func (m *MSSQL) Stats() sql.DBStats {
	return m.db.Stats()
}

// call executes one stored procedure as an RPC with named parameters.
func (m *MSSQL) call(ctx context.Context, proc Procedure, q Query) ([]records.Record, error) {
	if m.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.queryTimeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := m.breaker.execute(func() ([]records.Record, error) {
		return m.query(ctx, proc, q)
	})
	duration := time.Since(start)

	metrics.RecordProcedureCall(string(proc), duration, len(rows), err, classify(err))

	l := logging.Ctx(ctx)
	if err != nil {
		l.Error().
			Err(err).
			Str("procedure", string(proc)).
			Str("itemcode", q.ItemCode).
			Str("batch_no", q.BatchSpec).
			Str("proc_code", q.ProcCode).
			Dur("duration", duration).
			Msg("Stored procedure failed")
		return nil, &UpstreamError{Procedure: proc, Err: err}
	}

	l.Debug().
		Str("procedure", string(proc)).
		Int("rows", len(rows)).
		Dur("duration", duration).
		Msg("Stored procedure completed")
	return rows, nil
}

// query runs on a dedicated connection that is released on every path.
func (m *MSSQL) query(ctx context.Context, proc Procedure, q Query) ([]records.Record, error) {
	conn, err := m.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer closeWithLog(conn, "connection")

	rows, err := conn.QueryxContext(ctx, string(proc),
		sql.Named(ParamItemCode, q.ItemCode),
		sql.Named(ParamBatchNo, q.BatchSpec),
		sql.Named(ParamProcCode, q.ProcCode),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute: %w", err)
	}
	defer closeWithLog(rows, "rows")

	typeNames, err := columnTypeNames(rows)
	if err != nil {
		return nil, err
	}

	out := make([]records.Record, 0, 64)
	for rows.Next() {
		raw := make(map[string]interface{}, len(typeNames))
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(out)+1, err)
		}
		out = append(out, normalizeRow(raw, typeNames))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading result set: %w", err)
	}

	return out, nil
}

func columnTypeNames(rows *sqlx.Rows) (map[string]string, error) {
	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}
	names := make(map[string]string, len(cols))
	for _, c := range cols {
		names[c.Name()] = c.DatabaseTypeName()
	}
	return names, nil
}

// classify buckets an error for the procedure error metric.
func classify(err error) string {
	switch {
	case err == nil:
		return ""
	case isRejection(err):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "database"
	}
}

// closeWithLog closes a resource and logs any error.
// Used for cleanup where errors should be acknowledged but not fail the call.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}
