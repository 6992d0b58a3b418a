// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package gateway

import (
	"context"

	"github.com/tomtom215/mesgate/internal/chart"
	"github.com/tomtom215/mesgate/internal/logging"
	"github.com/tomtom215/mesgate/internal/metrics"
	"github.com/tomtom215/mesgate/internal/records"
	"github.com/tomtom215/mesgate/internal/rowsource"
	"github.com/tomtom215/mesgate/internal/stats"
)

// Keys added to PIMS summaries.
const (
	ItemCodeKey    = "품목코드"
	ProcessCodeKey = "공정코드"
)

// StatsResult is the outcome of a PIMS stats query.
type StatsResult struct {
	Summaries []stats.Summary
	// OriginalCount is the number of rows that went into aggregation.
	OriginalCount int
}

func (g *Gateway) fetcherFor(pt ProductType) (fetchFunc, error) {
	switch pt {
	case ProductBasic:
		return g.source.FetchPIMSBasic, nil
	case ProductL23:
		return g.source.FetchPIMSSmart, nil
	default:
		_, err := ParseProductType(string(pt))
		return nil, err
	}
}

// FetchPIMS returns renamed PIMS rows, filtered to the requested time
// windows and truncated to p.Limit.
func (g *Gateway) FetchPIMS(ctx context.Context, pt ProductType, p FetchParams) ([]records.Record, error) {
	const op = "fetch_pims"

	fetch, err := g.fetcherFor(pt)
	if err != nil {
		return nil, validationError(op, err)
	}
	plan, err := p.plan()
	if err != nil {
		return nil, validationError(op, err)
	}

	limit := records.ClampLimit(p.Limit)
	rows, err := g.fetchPIMS(ctx, op, fetch, p, plan, limit)
	if err != nil {
		return nil, err
	}
	return records.Limit(rows, limit), nil
}

// StatsPIMS summarizes PIMS rows per batch. Row limits do not apply.
func (g *Gateway) StatsPIMS(ctx context.Context, pt ProductType, p FetchParams) (StatsResult, error) {
	const op = "stats_pims"

	fetch, err := g.fetcherFor(pt)
	if err != nil {
		return StatsResult{}, validationError(op, err)
	}
	plan, err := p.plan()
	if err != nil {
		return StatsResult{}, validationError(op, err)
	}

	rows, err := g.fetchPIMS(ctx, op, fetch, p, plan, 0)
	if err != nil {
		return StatsResult{}, err
	}
	rows = g.scope(ctx, rows, p.ProcCode, true)

	summaries := g.aggregator.Aggregate(rows)
	for i, s := range summaries {
		s[ItemCodeKey] = p.ItemCode
		s[ProcessCodeKey] = p.ProcCode
		summaries[i] = stats.FormatForDisplay(s)
	}

	logging.Ctx(ctx).Info().
		Str("op", op).
		Str("product_type", string(pt)).
		Int("rows", len(rows)).
		Int("batches", len(summaries)).
		Msg("Batch statistics computed")

	return StatsResult{Summaries: summaries, OriginalCount: len(rows)}, nil
}

// ChartPIMS projects PIMS batch statistics for charting. ErrNoChartData is
// returned when no batch could be summarized.
func (g *Gateway) ChartPIMS(ctx context.Context, pt ProductType, p FetchParams) (chart.Payload, error) {
	res, err := g.StatsPIMS(ctx, pt, p)
	if err != nil {
		return chart.Empty(), err
	}
	if len(res.Summaries) == 0 {
		return chart.Empty(), ErrNoChartData
	}
	return chart.Shape(res.Summaries, g.chartOptions()), nil
}

// fetchPIMS runs a fetch plan: rename, then each fetch's time window. In
// common mode without a window a positive limit truncates the raw rows
// before renaming.
func (g *Gateway) fetchPIMS(ctx context.Context, op string, fetch fetchFunc, p FetchParams, plan fetchPlan, limit int) ([]records.Record, error) {
	tagMap := g.registry.TagMap()

	if !plan.individual {
		f := plan.fetches[0]
		raw, err := fetch(ctx, rowsource.Query{ItemCode: p.ItemCode, BatchSpec: f.batchSpec, ProcCode: p.ProcCode})
		if err != nil {
			return nil, upstreamError(op, err)
		}
		if limit > 0 && !plan.hasWindow() {
			raw = records.Limit(raw, limit)
		}
		return g.window(ctx, records.Rename(raw, tagMap), f.window), nil
	}

	var out []records.Record
	for _, f := range plan.fetches {
		raw, err := fetch(ctx, rowsource.Query{ItemCode: p.ItemCode, BatchSpec: f.batchSpec, ProcCode: p.ProcCode})
		if err != nil {
			if ctx.Err() != nil {
				return nil, upstreamError(op, err)
			}
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("op", op).
				Str("batch", f.batchSpec).
				Msg("Batch fetch failed, continuing without it")
			metrics.RecordBatchFetchFailure(op)
			continue
		}
		out = append(out, g.window(ctx, records.Rename(raw, tagMap), f.window)...)
	}
	if out == nil {
		out = []records.Record{}
	}
	return out, nil
}

// window applies a time window and reports what it dropped.
func (g *Gateway) window(ctx context.Context, rows []records.Record, w records.TimeWindow) []records.Record {
	if w.IsZero() {
		return rows
	}
	out, report := records.FilterTime(rows, w)
	if report.Skipped {
		logging.Ctx(ctx).Debug().Msg("No time column in result, time window not applied")
		return out
	}
	if report.Unparsable > 0 {
		logging.Ctx(ctx).Warn().
			Int("rows", report.Unparsable).
			Msg("Unparsable timestamps kept by time window")
	}
	metrics.RecordDropped("time_window", report.Dropped)
	return out
}

// scope applies the process-scope filter for procCode. It is skipped when
// procCode is empty or has no process type.
func (g *Gateway) scope(ctx context.Context, rows []records.Record, procCode string, translate bool) []records.Record {
	if procCode == "" {
		return rows
	}
	allowed, ok := g.registry.AllowedVariables(procCode, translate)
	if !ok {
		logging.Ctx(ctx).Debug().
			Str("proc_code", procCode).
			Msg("Process code has no type, variables not scoped")
		return rows
	}
	return records.ScopeFilter(rows, allowed)
}
