// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mesgate/internal/gateway"
	"github.com/tomtom215/mesgate/internal/logging"
	"github.com/tomtom215/mesgate/internal/validation"
)

// maxRequestBodyBytes bounds JSON request bodies.
const maxRequestBodyBytes = 1 << 20

// errEmptyBody is returned when a POST endpoint receives no body.
var errEmptyBody = errors.New("request body is required")

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// errorDetail renders err as "<Kind>: <message>".
func errorDetail(err error) string {
	return string(gateway.KindOf(err)) + ": " + err.Error()
}

// respondError logs err and answers 500 with its detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := gateway.KindOf(err)

	event := logging.Ctx(r.Context()).Warn()
	if kind == gateway.KindUpstream {
		event = logging.Ctx(r.Context()).Error()
	}
	event.
		Str("kind", string(kind)).
		Str("path", r.URL.Path).
		Str("error", sanitizeLogValue(err.Error())).
		Msg("Request failed")

	respondJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: errorDetail(err)})
}

// requestError marks a malformed or invalid request body.
func requestError(err error) error {
	return &gateway.Error{Kind: gateway.KindValidation, Op: "decode_request", Err: err}
}

// decodeRequest reads a JSON body into v and validates it.
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError(errEmptyBody)
		}
		return requestError(fmt.Errorf("invalid JSON: %w", err))
	}
	return validateRequest(v)
}

// validateRequest validates a struct using go-playground/validator.
func validateRequest(v interface{}) error {
	if verr := validation.ValidateStruct(v); verr != nil {
		return requestError(verr)
	}
	return nil
}
