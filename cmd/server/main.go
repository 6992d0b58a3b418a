// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/mesgate/internal/api"
	"github.com/tomtom215/mesgate/internal/config"
	"github.com/tomtom215/mesgate/internal/gateway"
	"github.com/tomtom215/mesgate/internal/logging"
	"github.com/tomtom215/mesgate/internal/mapping"
	"github.com/tomtom215/mesgate/internal/rowsource"
	"github.com/tomtom215/mesgate/internal/stats"
	"github.com/tomtom215/mesgate/internal/supervisor"
	"github.com/tomtom215/mesgate/internal/supervisor/services"
)

const startupPingTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always runs.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logCfg := cfg.EffectiveLogging()
	logging.Init(logging.Config{
		Level:     logCfg.Level,
		Format:    logCfg.Format,
		Caller:    logCfg.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("app", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("db_host", cfg.Database.Host).
		Str("db_name", cfg.Database.Name).
		Msg("Starting MES gateway")

	// Missing or unreadable files leave their table empty; lookups fall back.
	registry := mapping.Load(cfg.Mapping)

	db, err := rowsource.Open(cfg.Database, cfg.App.Name)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to configure SQL Server pool")
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing SQL Server pool")
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), startupPingTimeout)
	if err := db.Ping(pingCtx); err != nil {
		logging.Warn().Err(err).Msg("SQL Server unreachable at startup, serving anyway")
	} else {
		logging.Info().Msg("SQL Server connection verified")
	}
	pingCancel()

	gw := gateway.New(db, registry, stats.NewAggregator(), gateway.Options{
		NullForMissing: cfg.Chart.NullForMissing,
	})

	handler := api.NewHandler(gw, cfg.App.Version)
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFromServer(cfg.Server))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	if cfg.Database.MonitorInterval > 0 {
		tree.AddDataService(services.NewDBMonitorService(db, cfg.Database.MonitorInterval))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	exitCode := 0
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error during shutdown")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree stopped unexpectedly")
			exitCode = 1
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
	}

	logging.Info().Msg("MES gateway stopped")
	return exitCode
}
