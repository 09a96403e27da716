// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package casedata

import (
	"sync/atomic"

	"github.com/AleutianAI/TabularFOSS/services/engine/value"
)

// Case is one row of values conforming to a Proto.
//
// Cases are reference counted. A case with more than one reference is
// shared and must not be written through; call Unshare first to obtain an
// exclusively-owned copy. Read access never requires unsharing.
//
// Thread Safety:
//
//	The reference count itself is atomic, but case contents follow the
//	engine's single-threaded cooperative model and are not synchronized.
type Case struct {
	refs  atomic.Int32
	proto *Proto
	vals  []value.Value
}

// NewCase returns a case of the given proto at reference count 1. Numeric
// values start at 0 and strings at all spaces.
func NewCase(proto *Proto) *Case {
	c := &Case{
		proto: proto,
		vals:  make([]value.Value, proto.N()),
	}
	for i := range c.vals {
		c.vals[i] = value.New(proto.Width(i))
	}
	c.refs.Store(1)
	return c
}

// Proto returns the case's prototype.
func (c *Case) Proto() *Proto {
	return c.proto
}

// Ref acquires an additional reference and returns c for chaining.
func (c *Case) Ref() *Case {
	c.refs.Add(1)
	return c
}

// Unref releases one reference. The memory itself is garbage collected; the
// count exists to drive copy-on-write.
func (c *Case) Unref() {
	if c.refs.Add(-1) < 0 {
		panic("casedata: case unreferenced below zero")
	}
}

// RefCount returns the current reference count.
func (c *Case) RefCount() int {
	return int(c.refs.Load())
}

// IsShared reports whether more than one reference to c exists.
func (c *Case) IsShared() bool {
	return c.refs.Load() > 1
}

// Unshare returns a case with the same contents that the caller owns
// exclusively. If c is unshared it is returned as is; otherwise one
// reference to c is released and a deep copy at reference count 1 is
// returned.
func (c *Case) Unshare() *Case {
	if !c.IsShared() {
		return c
	}
	clone := c.Clone()
	c.Unref()
	return clone
}

// Clone returns a deep copy of c at reference count 1.
func (c *Case) Clone() *Case {
	n := &Case{
		proto: c.proto,
		vals:  make([]value.Value, len(c.vals)),
	}
	for i := range c.vals {
		n.vals[i] = value.Clone(c.vals[i], c.proto.Width(i))
	}
	n.refs.Store(1)
	return n
}

// Value returns the value at index i for reading. The result aliases the
// case's storage; do not write through it.
func (c *Case) Value(i int) *value.Value {
	return &c.vals[i]
}

// ValueRW returns the value at index i for writing. Panics if the case is
// shared; callers must Unshare first.
func (c *Case) ValueRW(i int) *value.Value {
	c.assertWritable()
	return &c.vals[i]
}

// Num returns the numeric value at index i.
func (c *Case) Num(i int) float64 {
	return c.vals[i].Number()
}

// Str returns the string bytes at index i.
func (c *Case) Str(i int) []byte {
	return c.vals[i].Bytes()
}

// SetNum writes a numeric value at index i. Panics if the case is shared.
func (c *Case) SetNum(i int, n float64) {
	c.assertWritable()
	c.vals[i].SetNumber(n)
}

// SetStr writes string bytes at index i, space padded or truncated to the
// column width. Panics if the case is shared.
func (c *Case) SetStr(i int, s []byte) {
	c.assertWritable()
	c.vals[i].SetString(s, c.proto.Width(i))
}

// SetValue copies v into index i at the column width. Panics if the case is
// shared.
func (c *Case) SetValue(i int, v *value.Value) {
	c.assertWritable()
	value.Copy(&c.vals[i], v, c.proto.Width(i))
}

// Resize returns a case conforming to newProto. Values whose width is
// unchanged are carried over; added or widened slots are set missing. The
// input reference is consumed. Panics if the protos are not conformable.
func (c *Case) Resize(newProto *Proto) *Case {
	if c.proto.Equal(newProto) {
		return c
	}
	if !c.proto.ConformableTo(newProto) {
		panic("casedata: case resize to non-conformable proto")
	}
	out := NewCase(newProto)
	for i := 0; i < newProto.N(); i++ {
		if w := c.proto.Width(i); w == newProto.Width(i) {
			value.Copy(&out.vals[i], &c.vals[i], w)
		} else {
			value.SetMissing(&out.vals[i], newProto.Width(i))
		}
	}
	c.Unref()
	return out
}

func (c *Case) assertWritable() {
	if c.IsShared() {
		panic("casedata: write to shared case (missing Unshare)")
	}
}
