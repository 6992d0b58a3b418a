// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/tomtom215/mesgate/internal/logging"
	"github.com/tomtom215/mesgate/internal/mapping"
	"github.com/tomtom215/mesgate/internal/records"
	"github.com/tomtom215/mesgate/internal/rowsource"
)

// SearchPIMS lists the batches and processes of an item in PIMS.
func (g *Gateway) SearchPIMS(ctx context.Context, p SearchParams) (records.SearchResult, error) {
	return g.search(ctx, "search_pims", mapping.FamilyPIMS, g.source.SearchPIMS, p)
}

// SearchLIMS lists the batches and processes of an item in LIMS.
func (g *Gateway) SearchLIMS(ctx context.Context, p SearchParams) (records.SearchResult, error) {
	return g.search(ctx, "search_lims", mapping.FamilyLIMS, g.source.SearchLIMS, p)
}

type fetchFunc func(context.Context, rowsource.Query) ([]records.Record, error)

func (g *Gateway) search(ctx context.Context, op string, family mapping.Family, fetch fetchFunc, p SearchParams) (records.SearchResult, error) {
	if strings.TrimSpace(p.ItemCode) == "" {
		return records.SearchResult{}, validationError(op, errors.New("itemcode is required"))
	}

	rows, err := fetch(ctx, rowsource.Query{ItemCode: p.ItemCode, BatchSpec: p.BatchNo, ProcCode: p.ProcCode})
	if err != nil {
		return records.SearchResult{}, upstreamError(op, err)
	}

	display := g.registry.DisplayMap(family)
	if len(display) == 0 {
		logging.Ctx(ctx).Warn().
			Str("kind", string(KindMappingUnavailable)).
			Str("family", string(family)).
			Msg("Process display map empty, listing process codes without names")
	}

	res := records.BuildSearchResult(rows, display)
	logging.Ctx(ctx).Debug().
		Str("op", op).
		Int("rows", len(rows)).
		Int("batches", len(res.Batches)).
		Int("processes", len(res.Processes)).
		Msg("Search completed")
	return res, nil
}
