// MES Gateway - PIMS/LIMS Batch Statistics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mesgate

// Package mapping holds the lookup tables that drive column renaming, process
// scoping and process display names.
//
// Tables are read once at startup (see Load) and never change afterwards, so a
// *Registry is safe to share between request goroutines without locking.
// Every accessor that hands out a map returns a copy.
package mapping

import (
	"maps"
	"slices"
)

// Family selects a process display table.
type Family string

const (
	FamilyPIMS Family = "PIMS"
	FamilyLIMS Family = "LIMS"
)

// DefaultRoomStateType is the process type unioned into every process scope.
const DefaultRoomStateType = "room-state"

// Tables is the raw content of the mapping files.
type Tables struct {
	// TagMap renames raw column names to display names.
	TagMap map[string]string
	// PIMSProcesses and LIMSProcesses map process codes to display names.
	PIMSProcesses map[string]string
	LIMSProcesses map[string]string
	// ProcessTypes maps process codes to process types.
	ProcessTypes map[string]string
	// ProcessVariables maps a process type to its relevant raw variables.
	ProcessVariables map[string][]string
}

// Options controls process scoping.
type Options struct {
	RoomStateType string
	SystemColumns []string
}

// Registry is the immutable set of mapping tables.
type Registry struct {
	tagMap        map[string]string
	display       map[Family]map[string]string
	processTypes  map[string]string
	processVars   map[string][]string
	roomStateType string
	systemColumns []string
}

// New builds a registry from already-parsed tables. The inputs are copied.
func New(t Tables, opts Options) *Registry {
	if opts.RoomStateType == "" {
		opts.RoomStateType = DefaultRoomStateType
	}

	vars := make(map[string][]string, len(t.ProcessVariables))
	for typ, names := range t.ProcessVariables {
		vars[typ] = slices.Clone(names)
	}

	return &Registry{
		tagMap: cloneOrEmpty(t.TagMap),
		display: map[Family]map[string]string{
			FamilyPIMS: cloneOrEmpty(t.PIMSProcesses),
			FamilyLIMS: cloneOrEmpty(t.LIMSProcesses),
		},
		processTypes:  cloneOrEmpty(t.ProcessTypes),
		processVars:   vars,
		roomStateType: opts.RoomStateType,
		systemColumns: slices.Clone(opts.SystemColumns),
	}
}

func cloneOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return maps.Clone(m)
}

// TagMap returns a copy of the raw→display column rename table.
func (r *Registry) TagMap() map[string]string {
	return maps.Clone(r.tagMap)
}

// Rename returns the display name for a raw column, or the name unchanged.
func (r *Registry) Rename(name string) string {
	if display, ok := r.tagMap[name]; ok {
		return display
	}
	return name
}

// ProcessDisplay returns the display name of a process code.
func (r *Registry) ProcessDisplay(f Family, code string) (string, bool) {
	name, ok := r.display[f][code]
	return name, ok
}

// DisplayMap returns a copy of the family's process display table.
func (r *Registry) DisplayMap(f Family) map[string]string {
	return cloneOrEmpty(r.display[f])
}

// ProcessType returns the process type of a process code.
func (r *Registry) ProcessType(code string) (string, bool) {
	typ, ok := r.processTypes[code]
	return typ, ok
}

// AllowedVariables returns the column names that survive process scoping for
// a process code: the variables of its type, the room-state variables and the
// system columns. With translate set, each name goes through the tag map
// (untranslated names are kept as is). ok is false when the code has no type,
// in which case no scoping should be applied.
func (r *Registry) AllowedVariables(code string, translate bool) (allowed map[string]struct{}, ok bool) {
	typ, ok := r.processTypes[code]
	if !ok {
		return nil, false
	}

	raw := make([]string, 0, len(r.processVars[typ])+len(r.processVars[r.roomStateType])+len(r.systemColumns))
	raw = append(raw, r.processVars[typ]...)
	raw = append(raw, r.processVars[r.roomStateType]...)
	raw = append(raw, r.systemColumns...)

	allowed = make(map[string]struct{}, len(raw))
	for _, name := range raw {
		if translate {
			name = r.Rename(name)
		}
		allowed[name] = struct{}{}
	}
	return allowed, true
}

// Stats reports the number of entries in each table.
func (r *Registry) Stats() map[string]int {
	pairs := 0
	for _, names := range r.processVars {
		pairs += len(names)
	}
	return map[string]int{
		TableTagMap:          len(r.tagMap),
		TablePIMSProcesses:   len(r.display[FamilyPIMS]),
		TableLIMSProcesses:   len(r.display[FamilyLIMS]),
		TableProcessTypes:    len(r.processTypes),
		TableProcessVariable: pairs,
	}
}
