// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/tomtom215/mesgate/internal/logging"
	"github.com/tomtom215/mesgate/internal/metrics"
)

// Prober is the part of the row source the pool monitor needs.
// Satisfied by *rowsource.MSSQL.
type Prober interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

// DBMonitorService pings the database on an interval and publishes the
// result and the pool counters as metrics. Reachability changes are logged
// once per transition.
type DBMonitorService struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	name     string

	// up is the last observed state; nil before the first probe.
	up *bool
}

// NewDBMonitorService creates a monitor probing every interval. Each ping is
// bounded by the smaller of the interval and 10s.
func NewDBMonitorService(p Prober, interval time.Duration) *DBMonitorService {
	timeout := 10 * time.Second
	if interval < timeout {
		timeout = interval
	}
	return &DBMonitorService{
		prober:   p,
		interval: interval,
		timeout:  timeout,
		name:     "db-monitor",
	}
}

// Serve implements suture.Service. It probes immediately, then on every tick
// until ctx is canceled.
func (s *DBMonitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *DBMonitorService) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.prober.Ping(pingCtx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	up := err == nil
	metrics.SetDatabaseUp(up)
	st := s.prober.Stats()
	metrics.SetPoolStats(st.OpenConnections, st.InUse, st.Idle, st.WaitCount)

	if s.up != nil && *s.up == up {
		return
	}
	s.up = &up
	if up {
		logging.Info().Int("open_connections", st.OpenConnections).Msg("Database reachable")
	} else {
		logging.Warn().Err(err).Msg("Database unreachable")
	}
}

// String implements fmt.Stringer.
func (s *DBMonitorService) String() string {
	return s.name
}
