// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/mesgate/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateMapping(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateDatabase validates the SQL Server settings
func (c *Config) validateDatabase() error {
	db := c.Database
	if strings.TrimSpace(db.Host) == "" {
		return fmt.Errorf("MSSQL_SERVER is required")
	}
	if strings.TrimSpace(db.Name) == "" {
		return fmt.Errorf("MSSQL_DATABASE is required")
	}
	if db.Port < 0 || db.Port > 65535 {
		return fmt.Errorf("MSSQL_PORT must be between 0 and 65535, got %d", db.Port)
	}
	if db.Driver != "sqlserver" && db.Driver != "mssql" {
		return fmt.Errorf("MSSQL_DRIVER must be sqlserver or mssql, got %q", db.Driver)
	}
	switch strings.ToLower(db.Encrypt) {
	case "disable", "false", "true", "strict":
	default:
		return fmt.Errorf("MSSQL_ENCRYPT must be one of disable, false, true, strict, got %q", db.Encrypt)
	}
	if db.ConnectTimeout <= 0 {
		return fmt.Errorf("MSSQL_CONNECT_TIMEOUT must be positive")
	}
	if db.QueryTimeout <= 0 {
		return fmt.Errorf("MSSQL_QUERY_TIMEOUT must be positive")
	}
	if db.MaxOpenConns < 1 {
		return fmt.Errorf("MSSQL_MAX_OPEN_CONNS must be at least 1, got %d", db.MaxOpenConns)
	}
	if db.MaxIdleConns < 0 || db.MaxIdleConns > db.MaxOpenConns {
		return fmt.Errorf("MSSQL_MAX_IDLE_CONNS must be between 0 and MSSQL_MAX_OPEN_CONNS (%d), got %d",
			db.MaxOpenConns, db.MaxIdleConns)
	}
	if db.MonitorInterval < 0 {
		return fmt.Errorf("MSSQL_MONITOR_INTERVAL must not be negative")
	}
	if db.Breaker.Enabled {
		if db.Breaker.MaxRequests == 0 {
			return fmt.Errorf("MSSQL_BREAKER_MAX_REQUESTS must be at least 1")
		}
		if db.Breaker.Timeout <= 0 {
			return fmt.Errorf("MSSQL_BREAKER_TIMEOUT must be positive")
		}
	}
	return nil
}

// validateMapping validates the mapping file settings. Missing files are not
// an error here: the registry degrades to empty tables at load time.
func (c *Config) validateMapping() error {
	switch strings.ToLower(c.Mapping.Encoding) {
	case "", "utf-8", "utf8", "euc-kr", "euckr", "cp949":
	default:
		return fmt.Errorf("MAPPING_ENCODING must be utf-8, euc-kr or cp949, got %q", c.Mapping.Encoding)
	}
	if strings.TrimSpace(c.Mapping.RoomStateType) == "" {
		return fmt.Errorf("ROOM_STATE_PROCESS_TYPE must not be empty")
	}
	return nil
}

// validateServer validates the HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Server.RateLimitReqs)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

// validateLogging validates the logging settings
func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
