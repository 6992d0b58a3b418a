// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package stats

import (
	"math"
	"reflect"
	"sort"
	"strconv"
)

// Descriptive holds the five statistics emitted per variable. A nil field is
// absent.
type Descriptive struct {
	Mean *float64
	Std  *float64
	Q25  *float64
	Q50  *float64
	Q75  *float64
}

// Describe computes sample mean, sample standard deviation (N-1) and the
// 0.25/0.50/0.75 quantiles of xs, each rounded to 4 decimals. Std is nil with
// fewer than two values; every field is nil for an empty input.
func Describe(xs []float64) Descriptive {
	if len(xs) == 0 {
		return Descriptive{}
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	m := mean(sorted)
	d := Descriptive{
		Mean: round4(m),
		Q25:  round4(quantile(sorted, 0.25)),
		Q50:  round4(quantile(sorted, 0.50)),
		Q75:  round4(quantile(sorted, 0.75)),
	}
	if len(sorted) > 1 {
		var ss float64
		for _, x := range sorted {
			ss += (x - m) * (x - m)
		}
		d.Std = round4(math.Sqrt(ss / float64(len(sorted)-1)))
	}
	return d
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// quantile interpolates linearly between the order statistics of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// round4 rounds to 4 decimals; NaN and infinities become nil.
func round4(x float64) *float64 {
	return roundTo(x, 4)
}

// roundTo rounds the exact binary value of x to places decimals, ties to
// even. Scaling by a power of ten first would turn values like 12.03125 into
// inexact ties.
func roundTo(x float64, places int) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		r = x
	}
	return &r
}

// Round2 rounds to 2 decimals, returning nil for NaN and infinities.
func Round2(x float64) *float64 {
	return roundTo(x, 2)
}

// Numeric returns v as a finite float64 when it is an integer or floating
// point value. Booleans, strings and non-finite floats are not numeric.
func Numeric(v interface{}) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case int32:
		f = float64(val)
	case int16:
		f = float64(val)
	case int8:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint64:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint16:
		f = float64(val)
	case uint8:
		f = float64(val)
	case nil, bool, string:
		return 0, false
	default:
		// named numeric types
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
