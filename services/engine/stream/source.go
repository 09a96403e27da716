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

import "github.com/AleutianAI/TabularFOSS/services/engine/casedata"

// sliceState owns the case references behind one or more slice cursors and
// releases them when the last cursor closes.
type sliceState struct {
	cases   []*casedata.Case
	cursors int
}

// sliceCursor reads from an in-memory slice of cases. It is cloneable, so
// readers over it never need the buffering shim.
type sliceCursor struct {
	st  *sliceState
	pos int
}

func (c *sliceCursor) Read() (*casedata.Case, error) {
	if c.pos >= len(c.st.cases) {
		return nil, nil
	}
	cc := c.st.cases[c.pos].Ref()
	c.pos++
	return cc, nil
}

func (c *sliceCursor) Close() error {
	c.st.cursors--
	if c.st.cursors == 0 {
		for _, cc := range c.st.cases {
			cc.Unref()
		}
		c.st.cases = nil
	}
	return nil
}

func (c *sliceCursor) CloneBackend() ReaderBackend {
	c.st.cursors++
	return &sliceCursor{st: c.st, pos: c.pos}
}

// FromCases builds a reader over cases. The reader takes ownership of the
// given references; callers keeping a case must Ref it first.
func FromCases(proto *casedata.Proto, cases []*casedata.Case) *Reader {
	st := &sliceState{cases: cases, cursors: 1}
	return NewSequential(nil, proto, int64(len(cases)), &sliceCursor{st: st})
}

// Empty returns a reader of the given shape that yields no cases.
func Empty(proto *casedata.Proto) *Reader {
	return FromCases(proto, nil)
}
