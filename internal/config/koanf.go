// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mesgate/config.yaml",
	"/etc/mesgate/config.yml",
}

const (
	// ConfigPathEnvVar overrides the config file path.
	ConfigPathEnvVar = "CONFIG_PATH"

	// EnvFileEnvVar overrides the environment file path.
	EnvFileEnvVar = "ENV_FILE"

	defaultEnvFile = ".env"
)

// defaultConfig returns a Config struct with all default values.
// These are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "MES Gateway",
			Version: "1.0.0",
			Debug:   false,
		},
		Database: DatabaseConfig{
			Host:                   "localhost",
			Port:                   0, // driver default (1433) or instance lookup
			Driver:                 "sqlserver",
			Encrypt:                "true",
			TrustServerCertificate: true,
			ConnectTimeout:         30 * time.Second,
			QueryTimeout:           2 * time.Minute,
			MaxOpenConns:           10,
			MaxIdleConns:           5,
			ConnMaxLifetime:        30 * time.Minute,
			ConnMaxIdleTime:        5 * time.Minute,
			MonitorInterval:        30 * time.Second,
			Breaker: BreakerConfig{
				Enabled:     true,
				MaxRequests: 3,
				Interval:    time.Minute,
				Timeout:     30 * time.Second,
			},
		},
		Mapping: MappingConfig{
			TagMapPath:          "data/tag_map.csv",
			PIMSProcessPath:     "data/process_name_pims.csv",
			LIMSProcessPath:     "data/process_name_lims.csv",
			ProcessTypePath:     "data/process_type.csv",
			ProcessVariablePath: "data/process_variable.csv",
			Encoding:            "utf-8",
			RoomStateType:       "room-state",
			SystemColumns:       []string{"CHARG", "시간", "MATNR", "KTSCH", "ARBPL", "EQUNR"},
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      5 * time.Minute, // stored procedures over wide windows are slow
			IdleTimeout:       2 * time.Minute,
			ShutdownTimeout:   30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     120,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Chart: ChartConfig{
			NullForMissing: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config File (optional YAML)
//  3. .env file (optional, never overrides the real environment)
//  4. Environment Variables
//
// Precedence is ENV > .env > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment file, merged into the process environment
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	// Layer 4: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Database.Driver = normalizeDriver(cfg.Database.Driver)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads ENV_FILE (default .env). A missing default file is not an
// error; a missing explicitly named file is.
func loadEnvFile() error {
	path, explicit := os.LookupEnv(EnvFileEnvVar)
	if !explicit || path == "" {
		path = defaultEnvFile
		explicit = false
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("failed to load environment file %s: %w", path, err)
}

// findConfigFile returns the first config file found, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated slices
var sliceConfigPaths = []string{
	"mapping.system_columns",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Application
	"app_name":    "app.name",
	"app_version": "app.version",
	"debug":       "app.debug",
	"secret_key":  "app.secret_key",

	// SQL Server (historical names first)
	"mssql_server":                   "database.host",
	"mssql_port":                     "database.port",
	"mssql_database":                 "database.name",
	"mssql_username":                 "database.user",
	"mssql_password":                 "database.password",
	"mssql_driver":                   "database.driver",
	"mssql_encrypt":                  "database.encrypt",
	"mssql_trust_server_certificate": "database.trust_server_certificate",
	"mssql_connect_timeout":          "database.connect_timeout",
	"mssql_query_timeout":            "database.query_timeout",
	"mssql_max_open_conns":           "database.max_open_conns",
	"mssql_max_idle_conns":           "database.max_idle_conns",
	"mssql_conn_max_lifetime":        "database.conn_max_lifetime",
	"mssql_conn_max_idle_time":       "database.conn_max_idle_time",
	"mssql_monitor_interval":         "database.monitor_interval",
	"mssql_breaker_enabled":          "database.breaker.enabled",
	"mssql_breaker_max_requests":     "database.breaker.max_requests",
	"mssql_breaker_interval":         "database.breaker.interval",
	"mssql_breaker_timeout":          "database.breaker.timeout",

	// Mapping files
	"tag_map_path":            "mapping.tag_map_path",
	"pims_process_map_path":   "mapping.pims_process_path",
	"lims_process_map_path":   "mapping.lims_process_path",
	"process_type_map_path":   "mapping.process_type_path",
	"process_var_map_path":    "mapping.process_variable_path",
	"mapping_encoding":        "mapping.encoding",
	"room_state_process_type": "mapping.room_state_type",
	"system_columns":          "mapping.system_columns",

	// HTTP server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Chart
	"chart_null_for_missing": "chart.null_for_missing",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Lookup is case-insensitive; unmapped keys return "" and are skipped.
//
// Examples:
//   - MSSQL_SERVER -> database.host
//   - mssql_database -> database.name
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
