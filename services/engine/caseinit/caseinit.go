// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package caseinit initializes transformation-created variables in each
// case of a procedure pass.
//
// Variables fall into two classes. Ordinary variables reinitialize every
// case: numeric to system-missing, strings to spaces. LEAVE variables
// (and scratch variables, which leave implicitly) initialize once to
// numeric zero or spaces and then carry their value from case to case.
package caseinit

import (
	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
	"github.com/AleutianAI/TabularFOSS/services/engine/dictionary"
	"github.com/AleutianAI/TabularFOSS/services/engine/stream"
	"github.com/AleutianAI/TabularFOSS/services/engine/value"
)

// slot is one variable's initialization entry.
type slot struct {
	caseIndex int
	width     int
	val       value.Value
}

// reinitValue is the fresh-each-case value: system-missing or spaces.
func reinitValue(width int) value.Value {
	v := value.New(width)
	value.SetMissing(&v, width)
	return v
}

// leftValue is the once-only initial value: zero or spaces.
func leftValue(width int) value.Value {
	return value.New(width)
}

// Caseinit tracks which variables need initialization and carries the
// current values of LEAVE variables between cases.
type Caseinit struct {
	preinited map[int]bool // case indices initialized by the data source
	reinit    []slot
	left      []slot
}

// New returns an empty initializer.
func New() *Caseinit {
	return &Caseinit{preinited: make(map[int]bool)}
}

// Clear forgets all marked variables.
func (ci *Caseinit) Clear() {
	ci.preinited = make(map[int]bool)
	ci.reinit = nil
	ci.left = nil
}

// Clone returns a deep copy, including the saved LEAVE values.
func (ci *Caseinit) Clone() *Caseinit {
	out := New()
	for idx := range ci.preinited {
		out.preinited[idx] = true
	}
	out.reinit = cloneSlots(ci.reinit)
	out.left = cloneSlots(ci.left)
	return out
}

func cloneSlots(slots []slot) []slot {
	out := make([]slot, len(slots))
	for i, s := range slots {
		out[i] = slot{caseIndex: s.caseIndex, width: s.width, val: value.Clone(s.val, s.width)}
	}
	return out
}

func (ci *Caseinit) marked(idx int) bool {
	if ci.preinited[idx] {
		return true
	}
	for _, s := range ci.reinit {
		if s.caseIndex == idx {
			return true
		}
	}
	for _, s := range ci.left {
		if s.caseIndex == idx {
			return true
		}
	}
	return false
}

// MarkAsPreinited records that d's current variables arrive already
// initialized (they come from the data source), so InitVars leaves them
// alone.
func (ci *Caseinit) MarkAsPreinited(d *dictionary.Dict) {
	for _, v := range d.Vars() {
		ci.preinited[v.CaseIndex()] = true
	}
}

// MarkForInit marks d's variables not already marked for initialization,
// classified by their leave status.
func (ci *Caseinit) MarkForInit(d *dictionary.Dict) {
	for _, v := range d.Vars() {
		idx := v.CaseIndex()
		if ci.marked(idx) {
			continue
		}
		w := v.Width()
		s := slot{caseIndex: idx, width: w}
		if v.Leave() {
			s.val = leftValue(w)
			ci.left = append(ci.left, s)
		} else {
			s.val = reinitValue(w)
			ci.reinit = append(ci.reinit, s)
		}
	}
}

// InitVars writes the initialization values into c: reinit variables get
// fresh missing values, LEAVE variables get their carried values. c must
// be unshared.
func (ci *Caseinit) InitVars(c *casedata.Case) {
	for _, s := range ci.reinit {
		c.SetValue(s.caseIndex, &s.val)
	}
	for i := range ci.left {
		c.SetValue(ci.left[i].caseIndex, &ci.left[i].val)
	}
}

// UpdateLeftVars saves the LEAVE variables' values from c, so the next
// case initialized by InitVars carries them forward.
func (ci *Caseinit) UpdateLeftVars(c *casedata.Case) {
	for i := range ci.left {
		s := &ci.left[i]
		value.Copy(&s.val, c.Value(s.caseIndex), s.width)
	}
}

// initBackend expands each input case to outProto and initializes the
// marked variables. The input prefix carries over unchanged.
type initBackend struct {
	sub      *stream.Reader
	ci       *Caseinit
	outProto *casedata.Proto
}

func (b *initBackend) Read() (*casedata.Case, error) {
	in := b.sub.Read()
	if in == nil {
		return nil, nil
	}
	inProto := in.Proto()
	n := inProto.N()
	if b.outProto.N() < n {
		n = b.outProto.N()
	}
	out := casedata.NewCase(b.outProto)
	for i := 0; i < n; i++ {
		if inProto.Width(i) == b.outProto.Width(i) {
			out.SetValue(i, in.Value(i))
		}
	}
	in.Unref()
	b.ci.InitVars(out)
	return out, nil
}

func (b *initBackend) Close() error {
	return b.sub.Close()
}

// TranslateReader consumes r and returns a reader of outProto cases whose
// marked variables are initialized each case. When there is nothing to
// initialize and the shape already matches, r is simply renamed.
func (ci *Caseinit) TranslateReader(r *stream.Reader, outProto *casedata.Proto) *stream.Reader {
	if len(ci.reinit) == 0 && len(ci.left) == 0 && r.Proto().Equal(outProto) {
		return stream.Rename(r)
	}
	return stream.NewSequential(r.Taint(), outProto, stream.CountUnknown, &initBackend{
		sub:      r,
		ci:       ci,
		outProto: outProto,
	})
}
