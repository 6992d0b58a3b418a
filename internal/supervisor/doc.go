// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

/*
Package supervisor runs the gateway's long-lived services under suture v4.

The tree has two layers so a failing database monitor never takes the API
down with it:

	RootSupervisor ("mesgate")
	├── DataSupervisor ("data-layer")
	│   └── DBMonitorService (pool reachability and metrics)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with backoff; supervisor events are logged through
the zerolog-backed slog adapter (sutureslog). Canceling the Serve context
shuts the tree down, waiting up to TreeConfig.ShutdownTimeout per service.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewDBMonitorService(source, cfg.Database.MonitorInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	errCh := tree.ServeBackground(ctx)
*/
package supervisor
