// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package services wraps gateway components as suture.Service values.
//
// Each Serve blocks until its context is canceled and returns ctx.Err() on a
// clean stop, so the supervisor does not restart it. Any other return value
// counts as a crash and triggers a restart with backoff.
package services
