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

import (
	"github.com/AleutianAI/TabularFOSS/services/engine/value"
)

// MissingClass selects which kinds of missing values a test considers.
// It is a bitmask so that procedures can exclude user missing, system
// missing, or both.
type MissingClass int

// Missing-value classes.
const (
	MissingNone   MissingClass = 0
	MissingUser   MissingClass = 1 << 0
	MissingSystem MissingClass = 1 << 1
	MissingAny                 = MissingUser | MissingSystem
)

// maxDiscreteMissing is the number of discrete user-missing values a
// variable may carry. With a numeric range in place, only one discrete
// value fits.
const maxDiscreteMissing = 3

// MissingValues holds a variable's user-missing specification: up to three
// discrete values, or for numeric variables a range plus at most one
// discrete value.
type MissingValues struct {
	width   int
	vals    []value.Value
	hasRng  bool
	lo, hi  float64
}

// NewMissingValues returns an empty specification for the given width.
func NewMissingValues(width int) MissingValues {
	return MissingValues{width: width}
}

// Width returns the width the specification applies to.
func (mv *MissingValues) Width() int { return mv.width }

// IsEmpty reports whether no user-missing values are declared.
func (mv *MissingValues) IsEmpty() bool {
	return len(mv.vals) == 0 && !mv.hasRng
}

// N returns the number of discrete missing values.
func (mv *MissingValues) N() int { return len(mv.vals) }

// Value returns the i'th discrete missing value.
func (mv *MissingValues) Value(i int) value.Value { return mv.vals[i] }

// HasRange reports whether a numeric missing range is declared, returning
// its bounds when so.
func (mv *MissingValues) HasRange() (lo, hi float64, ok bool) {
	return mv.lo, mv.hi, mv.hasRng
}

// Add appends a discrete missing value. Returns false when the
// specification is full.
func (mv *MissingValues) Add(v value.Value) bool {
	limit := maxDiscreteMissing
	if mv.hasRng {
		limit = 1
	}
	if len(mv.vals) >= limit {
		return false
	}
	mv.vals = append(mv.vals, value.Clone(v, mv.width))
	return true
}

// AddRange declares lo..hi (inclusive) missing. Only numeric variables may
// carry a range, and a range leaves room for a single discrete value.
func (mv *MissingValues) AddRange(lo, hi float64) bool {
	if mv.width != 0 || mv.hasRng || len(mv.vals) > 1 || lo > hi {
		return false
	}
	mv.hasRng = true
	mv.lo, mv.hi = lo, hi
	return true
}

// Clear removes all declared missing values.
func (mv *MissingValues) Clear() {
	mv.vals = nil
	mv.hasRng = false
}

// Contains reports whether v is user-missing under this specification.
func (mv *MissingValues) Contains(v *value.Value) bool {
	if mv.hasRng && mv.width == 0 {
		if n := v.Number(); n >= mv.lo && n <= mv.hi {
			return true
		}
	}
	for i := range mv.vals {
		if value.Equal(mv.vals[i], *v, mv.width) {
			return true
		}
	}
	return false
}

// IsMissing reports whether v is missing under the requested class. System
// missing applies only to numeric data.
func (mv *MissingValues) IsMissing(v *value.Value, class MissingClass) bool {
	if class&MissingSystem != 0 && mv.width == 0 && v.Number() == value.SysMis {
		return true
	}
	return class&MissingUser != 0 && mv.Contains(v)
}

// IsResizable reports whether the specification survives a width change
// without loss: same value type, and every string value narrowable only by
// trailing spaces. An empty specification resizes to anything.
func (mv *MissingValues) IsResizable(newWidth int) bool {
	if mv.IsEmpty() {
		return true
	}
	if (mv.width == 0) != (newWidth == 0) {
		return false
	}
	for i := range mv.vals {
		if !value.IsResizable(mv.vals[i], mv.width, newWidth) {
			return false
		}
	}
	return true
}

// Resize adjusts the specification to a new width. The caller must have
// checked IsResizable.
func (mv *MissingValues) Resize(newWidth int) {
	for i := range mv.vals {
		value.Resize(&mv.vals[i], mv.width, newWidth)
	}
	mv.width = newWidth
}

// Clone returns a deep copy.
func (mv *MissingValues) Clone() MissingValues {
	out := MissingValues{
		width:  mv.width,
		hasRng: mv.hasRng,
		lo:     mv.lo,
		hi:     mv.hi,
	}
	for i := range mv.vals {
		out.vals = append(out.vals, value.Clone(mv.vals[i], mv.width))
	}
	return out
}

// Equal reports whether two specifications declare the same missing values.
func (mv *MissingValues) Equal(o *MissingValues) bool {
	if mv.width != o.width || mv.hasRng != o.hasRng || len(mv.vals) != len(o.vals) {
		return false
	}
	if mv.hasRng && (mv.lo != o.lo || mv.hi != o.hi) {
		return false
	}
	for i := range mv.vals {
		if !value.Equal(mv.vals[i], o.vals[i], mv.width) {
			return false
		}
	}
	return true
}
