// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package chart projects per-batch summaries into chart-ready series: a mean
// trend per variable across batches and a coefficient-of-variation ranking
// of variable stability.
package chart

import (
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/mesgate/internal/records"
	"github.com/tomtom215/mesgate/internal/stats"
)

// CV interpretation thresholds, in percent.
const (
	LowCVThreshold    = 5.0
	MediumCVThreshold = 15.0
)

// CV interpretation labels.
const (
	StabilityLow    = "low"
	StabilityMedium = "medium"
	StabilityHigh   = "high"
)

// TrendPoint is one batch's mean for a variable. Value is nil only when
// Options.NullForMissing is set.
type TrendPoint struct {
	Batch string   `json:"batch"`
	Value *float64 `json:"value"`
}

// CVEntry ranks one variable by its coefficient of variation.
type CVEntry struct {
	Variable       string  `json:"variable"`
	CV             float64 `json:"cv"`
	Interpretation string  `json:"interpretation"`
}

// Overview summarizes a payload.
type Overview struct {
	TotalVariables      int     `json:"total_variables"`
	TotalBatches        int     `json:"total_batches"`
	MostStableVariable  *string `json:"most_stable_variable"`
	LeastStableVariable *string `json:"least_stable_variable"`
}

// Payload is the chart projection of a set of summaries.
type Payload struct {
	Variables []string                `json:"variables"`
	Batches   []string                `json:"batches"`
	TrendData map[string][]TrendPoint `json:"trend_data"`
	CVData    []CVEntry               `json:"cv_data"`
	Summary   Overview                `json:"summary"`
}

// Options tunes the projection.
type Options struct {
	// NullForMissing emits null trend values for batches without a mean
	// instead of 0.
	NullForMissing bool
}

// Empty returns a payload with no variables or batches.
func Empty() Payload {
	return Payload{
		Variables: []string{},
		Batches:   []string{},
		TrendData: map[string][]TrendPoint{},
		CVData:    []CVEntry{},
	}
}

// Interpret labels a CV percentage.
func Interpret(cv float64) string {
	switch {
	case cv < LowCVThreshold:
		return StabilityLow
	case cv < MediumCVThreshold:
		return StabilityMedium
	default:
		return StabilityHigh
	}
}

// Shape builds the chart payload for summaries.
//
// Batches are the distinct non-empty batch ids, sorted. Variables are the
// distinct V with a V_평균 key in any summary, sorted. When two summaries
// share a batch id the first one supplies that batch's trend value.
func Shape(summaries []stats.Summary, opts Options) Payload {
	p := Empty()
	if len(summaries) == 0 {
		return p
	}

	byBatch := make(map[string]stats.Summary)
	for _, s := range summaries {
		b := s.Batch()
		if b == "" {
			continue
		}
		if _, ok := byBatch[b]; !ok {
			byBatch[b] = s
			p.Batches = append(p.Batches, b)
		}
	}
	sort.Strings(p.Batches)

	p.Variables = variables(summaries)

	for _, v := range p.Variables {
		points := make([]TrendPoint, 0, len(p.Batches))
		for _, b := range p.Batches {
			mean, ok := stat(byBatch[b], v+stats.SuffixMean)
			switch {
			case ok:
				points = append(points, TrendPoint{Batch: b, Value: &mean})
			case opts.NullForMissing:
				points = append(points, TrendPoint{Batch: b})
			default:
				zero := 0.0
				points = append(points, TrendPoint{Batch: b, Value: &zero})
			}
		}
		p.TrendData[v] = points
	}

	for _, v := range p.Variables {
		if e, ok := cvEntry(summaries, v); ok {
			p.CVData = append(p.CVData, e)
		}
	}
	sort.SliceStable(p.CVData, func(i, j int) bool {
		return p.CVData[i].CV < p.CVData[j].CV
	})

	p.Summary.TotalVariables = len(p.Variables)
	p.Summary.TotalBatches = len(p.Batches)
	if n := len(p.CVData); n > 0 {
		most, least := p.CVData[0].Variable, p.CVData[n-1].Variable
		p.Summary.MostStableVariable = &most
		p.Summary.LeastStableVariable = &least
	}
	return p
}

func variables(summaries []stats.Summary) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, s := range summaries {
		for k := range s {
			v, ok := strings.CutSuffix(k, stats.SuffixMean)
			if !ok || v == records.BatchColumn || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// cvEntry averages V's means and stds over the summaries where both are
// present. Variables with no such summary, or an overall mean of zero, are
// skipped.
func cvEntry(summaries []stats.Summary, v string) (CVEntry, bool) {
	var sumMean, sumStd float64
	n := 0
	for _, s := range summaries {
		m, okM := stat(s, v+stats.SuffixMean)
		sd, okS := stat(s, v+stats.SuffixStd)
		if !okM || !okS {
			continue
		}
		sumMean += m
		sumStd += sd
		n++
	}
	if n == 0 {
		return CVEntry{}, false
	}

	overallMean := sumMean / float64(n)
	overallStd := sumStd / float64(n)
	if overallMean == 0 {
		return CVEntry{}, false
	}

	cv := overallStd / math.Abs(overallMean) * 100
	rounded := stats.Round2(cv)
	if rounded == nil {
		return CVEntry{}, false
	}
	return CVEntry{Variable: v, CV: *rounded, Interpretation: Interpret(cv)}, true
}

// stat reads a numeric statistic from a summary.
func stat(s stats.Summary, key string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	return stats.Numeric(s[key])
}
