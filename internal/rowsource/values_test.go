// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package rowsource

import (
	"testing"
	"time"
)

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 9, 5, 0, 0, time.Local)
	guid := []byte{0x78, 0x56, 0x34, 0x12, 0x34, 0x12, 0x78, 0x56, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}

	tests := []struct {
		name     string
		in       interface{}
		typeName string
		want     interface{}
	}{
		{"nil", nil, "FLOAT", nil},
		{"decimal bytes", []byte("12.3400"), "DECIMAL", 12.34},
		{"money bytes", []byte(" 5.5 "), "money", 5.5},
		{"unparseable decimal", []byte("n/a"), "NUMERIC", "n/a"},
		{"varchar bytes", []byte("B2401"), "VARCHAR", "B2401"},
		{"unknown type bytes", []byte("abc"), "", "abc"},
		{"varbinary", []byte{0xde, 0xad}, "VARBINARY", "dead"},
		{"uniqueidentifier", guid, "UNIQUEIDENTIFIER", "12345678-1234-5678-1234-56789ABCDEF0"},
		{"float32 widened", float32(1.5), "REAL", 1.5},
		{"int64 kept", int64(7), "INT", int64(7)},
		{"time kept", ts, "DATETIME", ts},
		{"bool kept", true, "BIT", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := normalizeValue(tt.in, tt.typeName); got != tt.want {
				t.Errorf("normalizeValue(%v, %q) = %#v, want %#v", tt.in, tt.typeName, got, tt.want)
			}
		})
	}
}

func TestNormalizeRow(t *testing.T) {
	t.Parallel()

	raw := map[string]interface{}{
		"CHARG": []byte("B1"),
		"TT101": []byte("21.25"),
		"NOTE":  nil,
	}
	types := map[string]string{"CHARG": "NVARCHAR", "TT101": "DECIMAL", "NOTE": "NVARCHAR"}

	rec := normalizeRow(raw, types)

	if rec["CHARG"] != "B1" {
		t.Errorf("CHARG = %#v", rec["CHARG"])
	}
	if rec["TT101"] != 21.25 {
		t.Errorf("TT101 = %#v", rec["TT101"])
	}
	if v, ok := rec["NOTE"]; !ok || v != nil {
		t.Errorf("NOTE = %#v, %v; want present nil", v, ok)
	}
	if _, isBytes := raw["CHARG"].([]byte); !isBytes {
		t.Error("normalizeRow must not modify its input")
	}
}
