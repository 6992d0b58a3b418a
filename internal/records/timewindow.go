// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package records

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidBound is returned for a time bound that cannot be parsed.
var ErrInvalidBound = errors.New("invalid time bound")

// boundLayouts are tried in order after the T separator is normalized.
var boundLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// cellLayouts additionally accept fractional seconds and bare dates.
var cellLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// looseTimestamp matches timestamps with unpadded month, day, hour, minute or
// second components, e.g. "2024-3-1 9:5:7".
var looseTimestamp = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[ T](\d{1,2}):(\d{1,2})(?::(\d{1,2})(\.\d+)?)?)?$`)

// TimeWindow is an inclusive interval; either end may be open.
type TimeWindow struct {
	Start    time.Time
	End      time.Time
	HasStart bool
	HasEnd   bool
}

// IsZero reports whether the window is open on both ends.
func (w TimeWindow) IsZero() bool {
	return !w.HasStart && !w.HasEnd
}

// Contains reports whether t lies inside the window, bounds included.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.HasStart && t.Before(w.Start) {
		return false
	}
	if w.HasEnd && t.After(w.End) {
		return false
	}
	return true
}

// ParseWindow parses optional start and end bounds. Empty strings leave that
// end open. A start after the end is rejected.
func ParseWindow(start, end string) (TimeWindow, error) {
	var w TimeWindow
	var err error

	if strings.TrimSpace(start) != "" {
		if w.Start, err = ParseBound(start); err != nil {
			return TimeWindow{}, fmt.Errorf("start_time: %w", err)
		}
		w.HasStart = true
	}
	if strings.TrimSpace(end) != "" {
		if w.End, err = ParseBound(end); err != nil {
			return TimeWindow{}, fmt.Errorf("end_time: %w", err)
		}
		w.HasEnd = true
	}
	if w.HasStart && w.HasEnd && w.Start.After(w.End) {
		return TimeWindow{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidBound,
			w.Start.Format(boundLayouts[0]), w.End.Format(boundLayouts[0]))
	}
	return w, nil
}

// ParseBound parses "YYYY-MM-DD HH:MM[:SS]" with a space or T separator, in
// local time.
func ParseBound(s string) (time.Time, error) {
	norm := strings.Replace(strings.TrimSpace(s), "T", " ", 1)
	for _, layout := range boundLayouts {
		if t, err := time.ParseInLocation(layout, norm, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD HH:MM[:SS])", ErrInvalidBound, s)
}

// ParseCell converts a TimeColumn cell to a local wall-clock time.
// time.Time values keep their wall clock: SQL Server DATETIME carries no zone
// and the driver reports it as UTC.
func ParseCell(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return time.Date(val.Year(), val.Month(), val.Day(),
			val.Hour(), val.Minute(), val.Second(), val.Nanosecond(), time.Local), true
	case string:
		return parseTimeString(val)
	default:
		return time.Time{}, false
	}
}

func parseTimeString(s string) (time.Time, bool) {
	s = padTimestamp(strings.TrimSpace(s))
	for _, layout := range cellLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// padTimestamp zero-pads single-digit date and time components and normalizes
// the separator to a space. Unrecognized input is returned unchanged.
func padTimestamp(s string) string {
	m := looseTimestamp.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	pad := func(p string) string {
		if len(p) == 1 {
			return "0" + p
		}
		return p
	}

	out := m[1] + "-" + pad(m[2]) + "-" + pad(m[3])
	if m[4] == "" {
		return out
	}
	out += " " + pad(m[4]) + ":" + pad(m[5])
	if m[6] != "" {
		out += ":" + pad(m[6]) + m[7]
	}
	return out
}

// TimeFilterReport describes what FilterTime did.
type TimeFilterReport struct {
	// Skipped is true when the window was open or no record had TimeColumn.
	Skipped bool
	// Dropped counts records outside the window.
	Dropped int
	// Unparsable counts records kept because their timestamp could not be read.
	Unparsable int
}

// FilterTime keeps records whose TimeColumn lies inside w. Records whose
// timestamp is missing or unreadable are kept and counted as Unparsable.
// When no record carries TimeColumn at all the filter is skipped.
func FilterTime(rows []Record, w TimeWindow) ([]Record, TimeFilterReport) {
	if w.IsZero() || !HasColumn(rows, TimeColumn) {
		return CloneAll(rows), TimeFilterReport{Skipped: true}
	}

	var report TimeFilterReport
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		v, ok := r.Get(TimeColumn)
		if !ok {
			report.Unparsable++
			out = append(out, r.Clone())
			continue
		}
		t, ok := ParseCell(v)
		if !ok {
			report.Unparsable++
			out = append(out, r.Clone())
			continue
		}
		if !w.Contains(t) {
			report.Dropped++
			continue
		}
		out = append(out, r.Clone())
	}
	return out, report
}
