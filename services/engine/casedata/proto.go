// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package casedata implements case prototypes and cases.
//
// A Proto is the immutable shape of a row: an ordered sequence of widths,
// one per column (0 numeric, otherwise string width). A Case is one row of
// values conforming to a Proto. Cases are reference counted with
// copy-on-write so that a case passed through a chain of stateless
// translators is never copied unless someone actually writes to it.
package casedata

// Proto is an immutable ordered sequence of column widths.
//
// Protos are shared freely by pointer; never modify the widths of an
// existing Proto. Derive changed shapes with WithWidth or Insert/Remove.
type Proto struct {
	widths []int
}

// NewProto returns a Proto with the given widths.
func NewProto(widths ...int) *Proto {
	ws := make([]int, len(widths))
	copy(ws, widths)
	for _, w := range ws {
		if w < 0 {
			panic("casedata: negative width in proto")
		}
	}
	return &Proto{widths: ws}
}

// N returns the number of widths.
func (p *Proto) N() int {
	return len(p.widths)
}

// Width returns the width at index i.
func (p *Proto) Width(i int) int {
	return p.widths[i]
}

// Widths returns a copy of the width sequence.
func (p *Proto) Widths() []int {
	ws := make([]int, len(p.widths))
	copy(ws, p.widths)
	return ws
}

// Equal reports whether p and q have identical width sequences.
func (p *Proto) Equal(q *Proto) bool {
	if p == q {
		return true
	}
	if len(p.widths) != len(q.widths) {
		return false
	}
	for i, w := range p.widths {
		if q.widths[i] != w {
			return false
		}
	}
	return true
}

// ConformableTo reports whether a case of proto p can be resized to proto q:
// the counts match and every width is either unchanged or a widened string.
func (p *Proto) ConformableTo(q *Proto) bool {
	if len(p.widths) != len(q.widths) {
		return false
	}
	for i, old := range p.widths {
		nw := q.widths[i]
		if nw == old {
			continue
		}
		if old > 0 && nw > old {
			continue // string widening
		}
		return false
	}
	return true
}

// WithWidth returns a new Proto identical to p except that index i has the
// given width. p is unchanged.
func (p *Proto) WithWidth(i, width int) *Proto {
	if width < 0 {
		panic("casedata: negative width in proto")
	}
	ws := make([]int, len(p.widths))
	copy(ws, p.widths)
	ws[i] = width
	return &Proto{widths: ws}
}

// Insert returns a new Proto with the given width inserted before index i.
func (p *Proto) Insert(i, width int) *Proto {
	if width < 0 {
		panic("casedata: negative width in proto")
	}
	ws := make([]int, 0, len(p.widths)+1)
	ws = append(ws, p.widths[:i]...)
	ws = append(ws, width)
	ws = append(ws, p.widths[i:]...)
	return &Proto{widths: ws}
}

// Remove returns a new Proto with n widths removed starting at index i.
func (p *Proto) Remove(i, n int) *Proto {
	ws := make([]int, 0, len(p.widths)-n)
	ws = append(ws, p.widths[:i]...)
	ws = append(ws, p.widths[i+n:]...)
	return &Proto{widths: ws}
}
