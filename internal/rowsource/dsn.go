// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package rowsource

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/mesgate/internal/config"
)

// BuildDSN builds a go-mssqldb URL connection string. Host accepts the
// "host\INSTANCE" and "host,port" forms used by SQL Server tooling; an
// explicit Port overrides a port given in Host.
func BuildDSN(cfg config.DatabaseConfig, appName string) string {
	host, instance, port := splitServer(cfg.Host)
	if cfg.Port > 0 {
		port = cfg.Port
	}

	query := url.Values{}
	if cfg.Name != "" {
		query.Add("database", cfg.Name)
	}
	query.Add("encrypt", strings.ToLower(cfg.Encrypt))
	query.Add("TrustServerCertificate", strconv.FormatBool(cfg.TrustServerCertificate))
	if appName != "" {
		query.Add("app name", appName)
	}
	if secs := int(cfg.ConnectTimeout.Seconds()); secs > 0 {
		query.Add("connection timeout", strconv.Itoa(secs))
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     host,
		RawQuery: query.Encode(),
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	if port > 0 {
		u.Host = net.JoinHostPort(host, strconv.Itoa(port))
	} else if instance != "" {
		u.Path = instance
	}

	return u.String()
}

// splitServer separates "host\INSTANCE" and "host,port".
func splitServer(server string) (host, instance string, port int) {
	host = strings.TrimSpace(server)
	if i := strings.LastIndex(host, ","); i >= 0 {
		if p, err := strconv.Atoi(strings.TrimSpace(host[i+1:])); err == nil {
			port = p
		}
		host = strings.TrimSpace(host[:i])
	}
	if i := strings.Index(host, `\`); i >= 0 {
		instance = host[i+1:]
		host = host[:i]
	}
	return host, instance, port
}

// redactDSN hides the password for logging.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "sqlserver://<unparseable>"
	}
	return u.Redacted()
}
