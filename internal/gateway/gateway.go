// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package gateway composes the row source, record transforms, aggregator and
// chart shaper into the operations served by the HTTP API.
//
// Pipelines:
//
//	PIMS data:   fetch -> rename -> time window -> limit
//	PIMS stats:  fetch -> rename -> time window -> process scope -> aggregate
//	PIMS chart:  PIMS stats -> shape
//	LIMS data:   fetch (raw column names)
//	LIMS chart:  fetch -> process scope (raw names) -> aggregate -> shape
//	search:      fetch -> display-name decoration (raw column names)
//
// PIMS fetches run in one of two modes. Common mode issues a single call for
// all batches and applies one time window. Individual mode issues one call per
// batch, each with its own window; a failing batch is logged and skipped.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/mesgate/internal/chart"
	"github.com/tomtom215/mesgate/internal/mapping"
	"github.com/tomtom215/mesgate/internal/rowsource"
	"github.com/tomtom215/mesgate/internal/stats"
)

// Kind classifies gateway errors.
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindUpstream   Kind = "UpstreamError"
	// KindMappingUnavailable and KindInternalAggregation are diagnostic only:
	// they appear in logs, never in returned errors.
	KindMappingUnavailable  Kind = "MappingUnavailable"
	KindInternalAggregation Kind = "InternalAggregationError"
)

// Error is returned by every gateway operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func upstreamError(op string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Err: err}
}

// KindOf returns the kind of err, or KindValidation when err is not a gateway
// error and KindUpstream when it wraps a rowsource.UpstreamError.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	var uerr *rowsource.UpstreamError
	if errors.As(err, &uerr) {
		return KindUpstream
	}
	return KindValidation
}

var (
	// ErrUnsupportedProductType is returned for a product type other than
	// basic or l23.
	ErrUnsupportedProductType = errors.New("unsupported product type (expected basic or l23)")

	// ErrNoChartData is returned when a chart has no statistics to project.
	ErrNoChartData = errors.New("no statistics available for chart")
)

// ProductType selects the PIMS production line.
type ProductType string

const (
	// ProductBasic is the legacy solid line.
	ProductBasic ProductType = "basic"
	// ProductL23 is the smart solid line.
	ProductL23 ProductType = "l23"
)

// ParseProductType validates a product type name.
func ParseProductType(s string) (ProductType, error) {
	switch pt := ProductType(s); pt {
	case ProductBasic, ProductL23:
		return pt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProductType, s)
	}
}

// Options tunes gateway output.
type Options struct {
	// NullForMissing is passed to the chart shaper.
	NullForMissing bool
}

// Gateway runs the query pipelines. It is safe for concurrent use.
type Gateway struct {
	source     rowsource.Source
	registry   *mapping.Registry
	aggregator *stats.Aggregator
	opts       Options
}

// New creates a gateway. A nil registry behaves as an empty one and a nil
// aggregator uses the wall clock.
func New(source rowsource.Source, registry *mapping.Registry, aggregator *stats.Aggregator, opts Options) *Gateway {
	if registry == nil {
		registry = mapping.New(mapping.Tables{}, mapping.Options{})
	}
	if aggregator == nil {
		aggregator = stats.NewAggregator()
	}
	return &Gateway{
		source:     source,
		registry:   registry,
		aggregator: aggregator,
		opts:       opts,
	}
}

// Ping checks the database.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.source.Ping(ctx)
}

// MappingStats reports mapping table sizes.
func (g *Gateway) MappingStats() map[string]int {
	return g.registry.Stats()
}

func (g *Gateway) chartOptions() chart.Options {
	return chart.Options{NullForMissing: g.opts.NullForMissing}
}
