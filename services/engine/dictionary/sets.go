// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dictionary

// Vector is a named ordered list of variables addressable by index in the
// command language.
type Vector struct {
	Name string
	Vars []*Variable
}

// MRSetType distinguishes the two kinds of multiple-response sets.
type MRSetType int

// Multiple-response set types.
const (
	// MRSetMultipleDichotomy counts a particular value across variables.
	MRSetMultipleDichotomy MRSetType = iota

	// MRSetMultipleCategory treats each variable as one response.
	MRSetMultipleCategory
)

// minMRSetVars is the smallest membership a multiple-response set may have;
// deleting variables below it drops the whole set.
const minMRSetVars = 2

// MRSet is a multiple-response set: a named group of variables analyzed
// together. Set names begin with '$'.
type MRSet struct {
	Name  string
	Label string
	Type  MRSetType
	Vars  []*Variable
}

// VarSet is a named group of variables used to scope variable lists in the
// GUI and in some commands.
type VarSet struct {
	Name string
	Vars []*Variable
}

// removeVar deletes every occurrence of v from vars, reporting whether
// anything was removed.
func removeVar(vars *[]*Variable, v *Variable) bool {
	out := (*vars)[:0]
	removed := false
	for _, w := range *vars {
		if w == v {
			removed = true
			continue
		}
		out = append(out, w)
	}
	*vars = out
	return removed
}
