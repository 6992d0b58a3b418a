// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package mapping

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tomtom215/mesgate/internal/config"
	"github.com/tomtom215/mesgate/internal/logging"
	"github.com/tomtom215/mesgate/internal/metrics"
)

// Table names used in logs and metrics.
const (
	TableTagMap          = "tag_map"
	TablePIMSProcesses   = "process_display_pims"
	TableLIMSProcesses   = "process_display_lims"
	TableProcessTypes    = "process_type"
	TableProcessVariable = "process_variable"
)

// Column headers expected in each file.
const (
	colTagOriginal  = "original_nam"
	colTagDisplay   = "display_name"
	colProcessCode  = "KTSCH"
	colProcessName  = "LTXA1"
	colTypeCode     = "공정코드"
	colTypeName     = "공정타입"
	colVariableName = "변수명(영문)"
)

// errMissingHeader marks a file whose header lacks a required column.
var errMissingHeader = errors.New("required column missing from header")

// Load reads every mapping file named in cfg. A table that cannot be loaded
// (missing file, unreadable file, bad header, CSV syntax error) is replaced by
// an empty table and logged as MappingUnavailable; Load itself never fails.
func Load(cfg config.MappingConfig) *Registry {
	log := logging.WithComponent("mapping")
	dec := decoderFor(cfg.Encoding)

	t := Tables{
		TagMap:        loadPairs(log, TableTagMap, cfg.TagMapPath, dec, colTagOriginal, colTagDisplay),
		PIMSProcesses: loadPairs(log, TablePIMSProcesses, cfg.PIMSProcessPath, dec, colProcessCode, colProcessName),
		LIMSProcesses: loadPairs(log, TableLIMSProcesses, cfg.LIMSProcessPath, dec, colProcessCode, colProcessName),
		ProcessTypes:  loadPairs(log, TableProcessTypes, cfg.ProcessTypePath, dec, colTypeCode, colTypeName),
	}
	t.ProcessVariables = loadMulti(log, TableProcessVariable, cfg.ProcessVariablePath, dec, colTypeName, colVariableName)

	reg := New(t, Options{
		RoomStateType: normalize(cfg.RoomStateType),
		SystemColumns: normalizeAll(cfg.SystemColumns),
	})

	for table, n := range reg.Stats() {
		metrics.SetMappingEntries(table, n)
	}
	log.Info().Interface("tables", reg.Stats()).Msg("Mapping tables loaded")

	return reg
}

// decoderFor returns the decoder for a configured file encoding. The UTF-8
// decoder strips a leading byte order mark.
func decoderFor(name string) *encoding.Decoder {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euc-kr", "euckr", "cp949":
		return korean.EUCKR.NewDecoder()
	default:
		return unicode.UTF8BOM.NewDecoder()
	}
}

// normalize trims and NFC-normalizes a key or value. Files saved on macOS
// carry decomposed Hangul, which would otherwise never match database names.
func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = normalize(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// loadPairs loads a two-column key→value table. The last occurrence of a key wins.
func loadPairs(log zerolog.Logger, table, path string, dec *encoding.Decoder, keyCol, valueCol string) map[string]string {
	out := map[string]string{}
	err := readTable(path, dec, []string{keyCol, valueCol}, func(line int, get func(string) string) {
		key, value := get(keyCol), get(valueCol)
		if key == "" || value == "" {
			log.Warn().Str("table", table).Int("line", line).Msg("Mapping row has an empty key or value (skipped)")
			return
		}
		out[key] = value
	})
	if err != nil {
		unavailable(log, table, path, err)
		return map[string]string{}
	}
	return out
}

// loadMulti loads a one-to-many table, one row per (key, value) pair.
// Values keep first-seen order and are de-duplicated per key.
func loadMulti(log zerolog.Logger, table, path string, dec *encoding.Decoder, keyCol, valueCol string) map[string][]string {
	out := map[string][]string{}
	seen := map[string]map[string]struct{}{}
	err := readTable(path, dec, []string{keyCol, valueCol}, func(line int, get func(string) string) {
		key, value := get(keyCol), get(valueCol)
		if key == "" || value == "" {
			log.Warn().Str("table", table).Int("line", line).Msg("Mapping row has an empty key or value (skipped)")
			return
		}
		if seen[key] == nil {
			seen[key] = map[string]struct{}{}
		}
		if _, dup := seen[key][value]; dup {
			return
		}
		seen[key][value] = struct{}{}
		out[key] = append(out[key], value)
	})
	if err != nil {
		unavailable(log, table, path, err)
		return map[string][]string{}
	}
	return out
}

func unavailable(log zerolog.Logger, table, path string, err error) {
	metrics.RecordMappingFailure(table)
	log.Warn().
		Str("kind", "MappingUnavailable").
		Str("table", table).
		Str("path", path).
		Err(err).
		Msg("Mapping table unavailable, continuing with an empty table")
}

// readTable opens path, validates the header and calls row for each record.
// Short rows reach row with empty values for the missing columns.
func readTable(path string, dec *encoding.Decoder, required []string, row func(line int, get func(string) string)) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("no path configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close() // read-only
	}()

	reader := csv.NewReader(transform.NewReader(f, dec))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return errors.New("file is empty")
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	colIndex, err := getColIndex(header, required)
	if err != nil {
		return err
	}

	line := 1
	for {
		line++
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		get := func(col string) string {
			if idx, ok := colIndex[col]; ok && idx < len(rec) {
				return normalize(rec[idx])
			}
			return ""
		}
		row(line, get)
	}
}

// getColIndex maps each required column to its position in the header.
func getColIndex(header, required []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		h = normalize(h)
		if _, exists := positions[h]; !exists {
			positions[h] = i
		}
	}

	colIndex := make(map[string]int, len(required))
	for _, col := range required {
		idx, ok := positions[norm.NFC.String(col)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", errMissingHeader, col)
		}
		colIndex[col] = idx
	}
	return colIndex, nil
}
