// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package rowsource

import (
	"encoding/hex"
	"strconv"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/tomtom215/mesgate/internal/records"
)

// normalizeRow converts driver values into the cell types the pipeline
// understands (number, string, time.Time, bool, nil). typeNames holds the
// database type name per column.
func normalizeRow(raw map[string]interface{}, typeNames map[string]string) records.Record {
	rec := make(records.Record, len(raw))
	for col, v := range raw {
		rec[col] = normalizeValue(v, typeNames[col])
	}
	return rec
}

func normalizeValue(v interface{}, typeName string) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return normalizeBytes(val, strings.ToUpper(typeName))
	case float32:
		return float64(val)
	default:
		return val
	}
}

// normalizeBytes handles the types go-mssqldb returns as raw bytes.
func normalizeBytes(b []byte, typeName string) interface{} {
	switch typeName {
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		s := string(b)
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
		return s
	case "UNIQUEIDENTIFIER":
		var id mssql.UniqueIdentifier
		if err := id.Scan(b); err == nil {
			return id.String()
		}
		return hex.EncodeToString(b)
	case "BINARY", "VARBINARY", "IMAGE", "TIMESTAMP", "ROWVERSION":
		return hex.EncodeToString(b)
	default:
		return string(b)
	}
}
