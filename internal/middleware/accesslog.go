// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mesgate/internal/logging"
)

// SlowRequestThreshold promotes access log lines to warn level.
var SlowRequestThreshold = 10 * time.Second

// AccessLog writes one structured log line per request, carrying the
// request_id/correlation_id placed in the context by the request ID middleware.
// 5xx responses log at error level.
func AccessLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next(rec, r)

		duration := time.Since(start)
		l := logging.Ctx(r.Context())

		var ev *zerolog.Event
		switch {
		case rec.statusCode >= http.StatusInternalServerError:
			ev = l.Error()
		case duration >= SlowRequestThreshold:
			ev = l.Warn()
		default:
			ev = l.Info()
		}

		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", routePattern(r)).
			Str("remote_addr", r.RemoteAddr).
			Int("status", rec.statusCode).
			Int("bytes", rec.bytes).
			Dur("duration", duration).
			Msg("Request completed")
	}
}
