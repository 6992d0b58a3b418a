// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package main is the entry point for the MES gateway server.
//
// The gateway exposes read-only JSON endpoints over the plant's SQL Server
// stored procedures: PIMS batch search and process data, LIMS quality
// results, per-batch statistics and chart payloads.
//
// # Startup
//
//  1. Configuration: defaults, then config.yaml, then .env and environment (Koanf v2)
//  2. Logging: zerolog, console output when APP_DEBUG is set
//  3. Mapping tables: tag, process, type and variable CSV files
//  4. SQL Server pool (go-mssqldb); an unreachable server only logs a warning
//  5. Supervisor tree: HTTP server plus the database monitor
//
// # Configuration
//
// The usual environment variables:
//
//	MSSQL_SERVER=plant-db\SQLEXPRESS
//	MSSQL_DATABASE=MES
//	MSSQL_USERNAME=reader
//	MSSQL_PASSWORD=secret
//	TAG_MAP_PATH=data/tag_map.csv
//	HTTP_PORT=8000
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests for HTTP_SHUTDOWN_TIMEOUT before the pool closes.
package main
