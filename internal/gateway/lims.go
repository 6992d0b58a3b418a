// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package gateway

import (
	"context"
	"strings"

	"github.com/tomtom215/mesgate/internal/chart"
	"github.com/tomtom215/mesgate/internal/logging"
	"github.com/tomtom215/mesgate/internal/records"
	"github.com/tomtom215/mesgate/internal/rowsource"
	"github.com/tomtom215/mesgate/internal/stats"
	"github.com/tomtom215/mesgate/internal/validation"
)

// LIMSResult is the outcome of a LIMS data query.
type LIMSResult struct {
	Rows    []records.Record
	Summary stats.DataSummary
}

// FetchLIMS returns laboratory rows with their raw column names.
func (g *Gateway) FetchLIMS(ctx context.Context, p LIMSParams) (LIMSResult, error) {
	const op = "fetch_lims"

	rows, err := g.fetchLIMS(ctx, op, p)
	if err != nil {
		return LIMSResult{}, err
	}
	return LIMSResult{Rows: rows, Summary: stats.Summarize(rows)}, nil
}

// ChartLIMS summarizes laboratory rows per batch and projects them for
// charting. ErrNoChartData is returned when no batch could be summarized.
func (g *Gateway) ChartLIMS(ctx context.Context, p LIMSParams) (chart.Payload, error) {
	const op = "chart_lims"

	rows, err := g.fetchLIMS(ctx, op, p)
	if err != nil {
		return chart.Empty(), err
	}
	rows = g.scope(ctx, rows, p.ProcCode, false)

	summaries := g.aggregator.Aggregate(rows)
	logging.Ctx(ctx).Info().
		Str("op", op).
		Int("rows", len(rows)).
		Int("batches", len(summaries)).
		Msg("Laboratory statistics computed")

	if len(summaries) == 0 {
		return chart.Empty(), ErrNoChartData
	}
	return chart.Shape(summaries, g.chartOptions()), nil
}

func (g *Gateway) fetchLIMS(ctx context.Context, op string, p LIMSParams) ([]records.Record, error) {
	if err := p.validate(); err != nil {
		return nil, validationError(op, err)
	}

	q := rowsource.Query{
		ItemCode:  p.ItemCode,
		BatchSpec: strings.Join(validation.SplitBatchList(p.BatchNo), ","),
		ProcCode:  p.ProcCode,
	}
	rows, err := g.source.FetchLIMS(ctx, q)
	if err != nil {
		return nil, upstreamError(op, err)
	}
	if rows == nil {
		rows = []records.Record{}
	}
	return rows, nil
}
