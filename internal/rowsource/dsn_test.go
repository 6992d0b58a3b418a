// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package rowsource

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/mesgate/internal/config"
)

func baseDBConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:                   "mes-db",
		Name:                   "MES",
		User:                   "reader",
		Password:               "p@ss:w/rd",
		Driver:                 "sqlserver",
		Encrypt:                "true",
		TrustServerCertificate: true,
		ConnectTimeout:         30 * time.Second,
	}
}

func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*config.DatabaseConfig)
		wantHost string
		wantPath string
	}{
		{"plain host", func(*config.DatabaseConfig) {}, "mes-db", ""},
		{"explicit port", func(c *config.DatabaseConfig) { c.Port = 1444 }, "mes-db:1444", ""},
		{"comma port", func(c *config.DatabaseConfig) { c.Host = "mes-db, 1500" }, "mes-db:1500", ""},
		{"named instance", func(c *config.DatabaseConfig) { c.Host = `mes-db\PROD` }, "mes-db", "/PROD"},
		{"port wins over instance", func(c *config.DatabaseConfig) {
			c.Host = `mes-db\PROD`
			c.Port = 1433
		}, "mes-db:1433", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := baseDBConfig()
			tt.mutate(&cfg)

			u, err := url.Parse(BuildDSN(cfg, "MES Gateway"))
			if err != nil {
				t.Fatalf("BuildDSN produced unparseable URL: %v", err)
			}
			if u.Scheme != "sqlserver" {
				t.Errorf("scheme = %q", u.Scheme)
			}
			if u.Host != tt.wantHost {
				t.Errorf("host = %q, want %q", u.Host, tt.wantHost)
			}
			if u.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", u.Path, tt.wantPath)
			}
			if pw, _ := u.User.Password(); pw != "p@ss:w/rd" || u.User.Username() != "reader" {
				t.Errorf("credentials not round-tripped: %v", u.User)
			}

			q := u.Query()
			want := map[string]string{
				"database":               "MES",
				"encrypt":                "true",
				"TrustServerCertificate": "true",
				"app name":               "MES Gateway",
				"connection timeout":     "30",
			}
			for k, v := range want {
				if q.Get(k) != v {
					t.Errorf("query %q = %q, want %q", k, q.Get(k), v)
				}
			}
		})
	}
}

func TestBuildDSNWithoutUser(t *testing.T) {
	t.Parallel()

	cfg := baseDBConfig()
	cfg.User = ""
	dsn := BuildDSN(cfg, "")

	if strings.Contains(dsn, "@") {
		t.Errorf("DSN without user should have no userinfo: %s", dsn)
	}
	if strings.Contains(dsn, "app+name") {
		t.Errorf("empty app name should be omitted: %s", dsn)
	}
}

func TestRedactDSN(t *testing.T) {
	t.Parallel()

	red := redactDSN(BuildDSN(baseDBConfig(), "x"))
	if strings.Contains(red, "p@ss") || strings.Contains(red, "w%2Frd") {
		t.Errorf("password leaked: %s", red)
	}
	if !strings.Contains(red, "reader") {
		t.Errorf("username should remain visible: %s", red)
	}
}
