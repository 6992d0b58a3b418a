// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

package mapping

import (
	"testing"
)

func testRegistry() *Registry {
	return New(Tables{
		TagMap: map[string]string{"CHARG": "배치번호", "TT101": "Inlet Temp"},
		PIMSProcesses: map[string]string{
			"AB1": "과립",
		},
		ProcessTypes: map[string]string{"AB1": "granulation", "ZZ9": "orphan"},
		ProcessVariables: map[string][]string{
			"granulation": {"TT101", "X"},
			"room-state":  {"RH"},
		},
	}, Options{SystemColumns: []string{"CHARG"}})
}

func keys(m map[string]struct{}) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func TestAllowedVariablesTranslated(t *testing.T) {
	t.Parallel()

	allowed, ok := testRegistry().AllowedVariables("AB1", true)
	if !ok {
		t.Fatal("expected AB1 to have a scope")
	}
	got := keys(allowed)
	for _, want := range []string{"Inlet Temp", "X", "RH", "배치번호"} {
		if !got[want] {
			t.Errorf("allowed set missing %q: %v", want, got)
		}
	}
	if got["TT101"] || got["CHARG"] {
		t.Errorf("translated set should not contain raw names: %v", got)
	}
	if len(got) != 4 {
		t.Errorf("allowed set size = %d, want 4", len(got))
	}
}

func TestAllowedVariablesRaw(t *testing.T) {
	t.Parallel()

	allowed, ok := testRegistry().AllowedVariables("AB1", false)
	if !ok {
		t.Fatal("expected AB1 to have a scope")
	}
	got := keys(allowed)
	for _, want := range []string{"TT101", "X", "RH", "CHARG"} {
		if !got[want] {
			t.Errorf("raw allowed set missing %q: %v", want, got)
		}
	}
}

func TestAllowedVariablesTypeWithoutVariables(t *testing.T) {
	t.Parallel()

	allowed, ok := testRegistry().AllowedVariables("ZZ9", true)
	if !ok {
		t.Fatal("typed code should be scoped even without variables")
	}
	got := keys(allowed)
	if !got["RH"] || !got["배치번호"] || len(got) != 2 {
		t.Errorf("allowed = %v, want room-state and system columns only", got)
	}
}

func TestAllowedVariablesUnknownCode(t *testing.T) {
	t.Parallel()

	if allowed, ok := testRegistry().AllowedVariables("NOPE", true); ok || allowed != nil {
		t.Errorf("AllowedVariables(NOPE) = %v, %v; want nil, false", allowed, ok)
	}
}

func TestRegistryIsImmutable(t *testing.T) {
	t.Parallel()

	src := map[string]string{"A": "a"}
	reg := New(Tables{TagMap: src}, Options{})
	src["A"] = "changed"

	if reg.Rename("A") != "a" {
		t.Error("registry must not alias the caller's map")
	}

	tm := reg.TagMap()
	tm["A"] = "mutated"
	if reg.Rename("A") != "a" {
		t.Error("TagMap must return a copy")
	}

	dm := reg.DisplayMap(FamilyPIMS)
	dm["X"] = "y"
	if _, ok := reg.ProcessDisplay(FamilyPIMS, "X"); ok {
		t.Error("DisplayMap must return a copy")
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	reg := New(Tables{}, Options{})
	if reg.roomStateType != DefaultRoomStateType {
		t.Errorf("roomStateType = %q, want default", reg.roomStateType)
	}
	if reg.DisplayMap(FamilyLIMS) == nil {
		t.Error("DisplayMap should never return nil")
	}
}
