// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package casemap rearranges case values between dictionary layouts.
//
// A Map copies values from source positions into a destination shape. A
// nil *Map is the identity and costs nothing to execute, so producers of
// maps return nil whenever the rearrangement would be a no-op.
package casemap

import (
	"fmt"

	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
	"github.com/AleutianAI/TabularFOSS/services/engine/dictionary"
	"github.com/AleutianAI/TabularFOSS/services/engine/stream"
)

// Map translates cases from one layout to another. The zero-cost identity
// is represented by a nil *Map.
type Map struct {
	proto *casedata.Proto
	src   []int // source index per destination position
}

// newMap elides identity mappings: when src is 0..n-1 and the shapes
// agree, nil comes back instead of a working map.
func newMap(inProto, outProto *casedata.Proto, src []int) *Map {
	if inProto != nil && inProto.Equal(outProto) {
		identity := true
		for i, s := range src {
			if s != i {
				identity = false
				break
			}
		}
		if identity {
			return nil
		}
	}
	return &Map{proto: outProto, src: src}
}

// Proto returns the destination shape, or nil for the identity map.
func (m *Map) Proto() *casedata.Proto {
	if m == nil {
		return nil
	}
	return m.proto
}

// Execute translates c into the destination layout, consuming the input
// reference. The identity map returns c unchanged.
func (m *Map) Execute(c *casedata.Case) *casedata.Case {
	if m == nil {
		return c
	}
	out := casedata.NewCase(m.proto)
	for dst, src := range m.src {
		out.SetValue(dst, c.Value(src))
	}
	c.Unref()
	return out
}

// TranslateReader consumes r and returns a reader whose cases pass through
// m. The identity map hands r back untouched.
func TranslateReader(m *Map, r *stream.Reader) *stream.Reader {
	if m == nil {
		return r
	}
	return stream.TranslateStateless(r, m.proto, m.Execute)
}

// Stage records a dictionary's layout so that, after variables are
// deleted or reordered, a Map can translate cases of the old layout into
// the new one.
type Stage struct {
	dict  *dictionary.Dict
	proto *casedata.Proto
	index map[*dictionary.Variable]int
}

// NewStage snapshots d's current layout.
func NewStage(d *dictionary.Dict) *Stage {
	s := &Stage{
		dict:  d,
		proto: d.Proto(),
		index: make(map[*dictionary.Variable]int, d.N()),
	}
	for _, v := range d.Vars() {
		s.index[v] = v.CaseIndex()
	}
	return s
}

// ToMap builds a Map from the staged layout to the dictionary's current
// one. Deleting and reordering variables after staging is supported;
// adding one is a caller bug reported as a *VarAddedError.
func (s *Stage) ToMap() (*Map, error) {
	cur := s.dict.Vars()
	src := make([]int, len(cur))
	for i, v := range cur {
		old, ok := s.index[v]
		if !ok {
			return nil, &VarAddedError{Name: v.Name()}
		}
		src[i] = old
	}
	return newMap(s.proto, s.dict.Proto(), src), nil
}

// ByName builds a Map translating cases laid out per src into dst's
// layout, matching variables by name. Every variable of dst must exist in
// src with the same width.
func ByName(src, dst *dictionary.Dict) (*Map, error) {
	cur := dst.Vars()
	from := make([]int, len(cur))
	for i, v := range cur {
		sv := src.LookupVar(v.Name())
		if sv == nil {
			return nil, fmt.Errorf("casemap: variable %q not in source dictionary", v.Name())
		}
		if sv.Width() != v.Width() {
			return nil, fmt.Errorf("casemap: variable %q width mismatch (%d vs %d)",
				v.Name(), sv.Width(), v.Width())
		}
		from[i] = sv.CaseIndex()
	}
	return newMap(src.Proto(), dst.Proto(), from), nil
}

// Project builds a Map keeping only vars, in the given order. All vars
// must belong to d.
func Project(d *dictionary.Dict, vars []*dictionary.Variable) *Map {
	src := make([]int, len(vars))
	widths := make([]int, len(vars))
	for i, v := range vars {
		src[i] = v.CaseIndex()
		widths[i] = v.Width()
	}
	return newMap(d.Proto(), casedata.NewProto(widths...), src)
}
