// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stream

// Taint is a sticky failure flag shared along a chain of case streams.
//
// When an I/O error taints a reader, every reader derived from it becomes
// tainted too, and every upstream reader learns that a tainted successor
// exists. Consumers test HasTaintedSuccessor before emitting output for a
// completed pass.
//
// Thread Safety: none; taints follow the engine's single-threaded model.
type Taint struct {
	tainted     bool
	succTainted bool
	succ        []*Taint
	pred        []*Taint
}

// NewTaint returns a clean taint.
func NewTaint() *Taint {
	return &Taint{}
}

// Chain arranges for taint to flow from `from` to `to`. If `from` is
// already tainted, `to` becomes tainted immediately.
func Chain(from, to *Taint) {
	from.succ = append(from.succ, to)
	to.pred = append(to.pred, from)
	if from.tainted {
		to.SetTainted()
	}
	if to.HasTaintedSuccessor() {
		from.noteSuccTainted()
	}
}

// SetTainted marks t tainted and propagates downstream.
func (t *Taint) SetTainted() {
	if t.tainted {
		return
	}
	t.tainted = true
	t.noteSuccTainted()
	for _, s := range t.succ {
		s.SetTainted()
	}
}

func (t *Taint) noteSuccTainted() {
	if t.succTainted {
		return
	}
	t.succTainted = true
	for _, p := range t.pred {
		p.noteSuccTainted()
	}
}

// Tainted reports whether t itself is tainted.
func (t *Taint) Tainted() bool {
	return t.tainted
}

// HasTaintedSuccessor reports whether t or anything derived from it is
// tainted.
func (t *Taint) HasTaintedSuccessor() bool {
	return t.tainted || t.succTainted
}
