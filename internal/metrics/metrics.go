// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package metrics holds the Prometheus instrumentation for the gateway:
// stored procedure calls, the circuit breaker in front of them, mapping table
// sizes, the statistics pipeline and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Stored procedure metrics
	ProcedureDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mes_procedure_duration_seconds",
			Help:    "Duration of MES stored procedure calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}, // wide PIMS windows run for minutes
		},
		[]string{"procedure"},
	)

	ProcedureErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mes_procedure_errors_total",
			Help: "Total number of failed MES stored procedure calls",
		},
		[]string{"procedure", "error_type"}, // error_type: "timeout", "canceled", "breaker_open", "database"
	)

	ProcedureRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mes_procedure_rows_total",
			Help: "Total number of rows returned by MES stored procedures",
		},
		[]string{"procedure"},
	)

	// Mapping registry metrics
	MappingEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mapping_table_entries",
			Help: "Number of entries loaded per mapping table",
		},
		[]string{"table"},
	)

	MappingLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapping_load_failures_total",
			Help: "Total number of mapping tables that could not be loaded",
		},
		[]string{"table"},
	)

	// Pipeline metrics
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stats_aggregation_duration_seconds",
			Help:    "Duration of per-batch statistics aggregation in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	AggregationBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_batches_summarized_total",
			Help: "Total number of batch summaries produced",
		},
	)

	AggregationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_aggregation_failures_total",
			Help: "Total number of aggregations abandoned after an internal error",
		},
	)

	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_dropped_total",
			Help: "Total number of records excluded from processing",
		},
		[]string{"reason"}, // reason: "missing_batch", "time_window"
	)

	BatchFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "individual_batch_fetch_failures_total",
			Help: "Total number of per-batch fetches skipped in individual mode",
		},
		[]string{"operation"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Database pool metrics, refreshed by the pool monitor
	DatabaseUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mes_database_up",
			Help: "Whether the last database ping succeeded (1) or failed (0)",
		},
	)

	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mes_db_pool_connections",
			Help: "Connections in the SQL Server pool by state",
		},
		[]string{"state"}, // "open", "in_use", "idle"
	)

	DBPoolWaitCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mes_db_pool_wait_count",
			Help: "Cumulative number of connections waited for",
		},
	)
)

// RecordProcedureCall records one stored procedure call. errorType is ignored
// when err is nil.
func RecordProcedureCall(procedure string, duration time.Duration, rows int, err error, errorType string) {
	ProcedureDuration.WithLabelValues(procedure).Observe(duration.Seconds())
	if err != nil {
		ProcedureErrors.WithLabelValues(procedure, errorType).Inc()
		return
	}
	ProcedureRows.WithLabelValues(procedure).Add(float64(rows))
}

// SetMappingEntries publishes the size of a mapping table.
func SetMappingEntries(table string, n int) {
	MappingEntries.WithLabelValues(table).Set(float64(n))
}

// RecordMappingFailure counts a mapping table that degraded to empty.
func RecordMappingFailure(table string) {
	MappingLoadFailures.WithLabelValues(table).Inc()
}

// RecordAggregation records one aggregation run.
func RecordAggregation(duration time.Duration, batches int, failed bool) {
	AggregationDuration.Observe(duration.Seconds())
	if failed {
		AggregationFailures.Inc()
		return
	}
	AggregationBatches.Add(float64(batches))
}

// RecordDropped counts records excluded for reason.
func RecordDropped(reason string, n int) {
	if n > 0 {
		RecordsDropped.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordBatchFetchFailure counts a skipped batch in individual mode.
func RecordBatchFetchFailure(operation string) {
	BatchFetchFailures.WithLabelValues(operation).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetDatabaseUp publishes the result of a database ping.
func SetDatabaseUp(up bool) {
	if up {
		DatabaseUp.Set(1)
	} else {
		DatabaseUp.Set(0)
	}
}

// SetPoolStats publishes connection pool counters.
func SetPoolStats(open, inUse, idle int, waitCount int64) {
	DBPoolConnections.WithLabelValues("open").Set(float64(open))
	DBPoolConnections.WithLabelValues("in_use").Set(float64(inUse))
	DBPoolConnections.WithLabelValues("idle").Set(float64(idle))
	DBPoolWaitCount.Set(float64(waitCount))
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
