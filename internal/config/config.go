// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package config loads the gateway configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every optional setting
//  2. Config File: optional YAML file (CONFIG_PATH or config.yaml)
//  3. Environment File: a single .env file (ENV_FILE, default ".env"), which never
//     overrides variables already present in the process environment
//  4. Environment Variables: override any setting
//
// Environment names are case-insensitive and include the historical
// MSSQL_SERVER / MSSQL_DATABASE / MSSQL_USERNAME / MSSQL_PASSWORD / MSSQL_DRIVER
// names used by existing deployments.
//
// The returned *Config is treated as read-only after Load.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config holds all gateway configuration.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Database DatabaseConfig `koanf:"database"`
	Mapping  MappingConfig  `koanf:"mapping"`
	Server   ServerConfig   `koanf:"server"`
	Chart    ChartConfig    `koanf:"chart"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// AppConfig identifies the running service.
type AppConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
	// Debug forces debug-level console logging.
	Debug     bool   `koanf:"debug"`
	SecretKey string `koanf:"secret_key"`
}

// DatabaseConfig holds the SQL Server connection and pool settings.
type DatabaseConfig struct {
	// Host may carry an instance ("host\\INSTANCE") or a port ("host,1433").
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Driver is the database/sql driver name: sqlserver or mssql.
	// ODBC driver names ("ODBC Driver 17 for SQL Server") are accepted and mapped to sqlserver.
	Driver string `koanf:"driver"`

	// Encrypt is passed through to the driver: disable, false, true or strict.
	Encrypt                string        `koanf:"encrypt"`
	TrustServerCertificate bool          `koanf:"trust_server_certificate"`
	ConnectTimeout         time.Duration `koanf:"connect_timeout"`
	QueryTimeout           time.Duration `koanf:"query_timeout"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`

	// MonitorInterval is how often the pool monitor pings the database.
	// Zero disables the monitor.
	MonitorInterval time.Duration `koanf:"monitor_interval"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker in front of the stored procedures.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests"`
	// Interval is the closed-state window after which counts are cleared.
	Interval time.Duration `koanf:"interval"`
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `koanf:"timeout"`
}

// MappingConfig locates the mapping CSV files.
type MappingConfig struct {
	TagMapPath          string `koanf:"tag_map_path"`
	PIMSProcessPath     string `koanf:"pims_process_path"`
	LIMSProcessPath     string `koanf:"lims_process_path"`
	ProcessTypePath     string `koanf:"process_type_path"`
	ProcessVariablePath string `koanf:"process_variable_path"`

	// Encoding of the files: utf-8, euc-kr or cp949.
	Encoding string `koanf:"encoding"`

	// RoomStateType is the process type whose variables are kept for every process.
	RoomStateType string `koanf:"room_state_type"`

	// SystemColumns are raw column names that survive process scoping.
	SystemColumns []string `koanf:"system_columns"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// ChartConfig controls chart payload shaping.
type ChartConfig struct {
	// NullForMissing emits null in trend series for batches without a mean
	// instead of 0.
	NullForMissing bool `koanf:"null_for_missing"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// EffectiveLogging applies App.Debug on top of the logging section.
func (c *Config) EffectiveLogging() LoggingConfig {
	l := c.Logging
	if c.App.Debug {
		l.Level = "debug"
		l.Format = "console"
		l.Caller = true
	}
	return l
}

// normalizeDriver maps ODBC-style driver names to the go-mssqldb driver name.
func normalizeDriver(driver string) string {
	d := strings.ToLower(strings.TrimSpace(driver))
	switch {
	case d == "":
		return "sqlserver"
	case d == "sqlserver" || d == "mssql":
		return d
	case strings.Contains(d, "sql server"), strings.Contains(d, "odbc"), d == "pymssql", d == "freetds":
		return "sqlserver"
	default:
		return d
	}
}
