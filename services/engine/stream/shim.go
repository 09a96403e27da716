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

// shimState buffers cases read from a forward-only backend so that several
// cursors can replay them. Cases in buf are retained by the shim; cursors
// hand out extra references.
type shimState struct {
	src     ReaderBackend
	buf     []*casedata.Case
	eof     bool
	cursors int
}

// shimCursor is an independent position within a shared shimState.
type shimCursor struct {
	st  *shimState
	pos int
}

// installShim replaces r's forward-only backend with a buffering shim and
// returns r's own cursor. Cases already consumed from r are not replayed;
// the shim begins at r's current position, which is what Clone needs.
func installShim(r *Reader) *shimCursor {
	if c, ok := r.backend.(*shimCursor); ok {
		return c
	}
	st := &shimState{src: r.backend, cursors: 1}
	cursor := &shimCursor{st: st}
	r.backend = cursor
	return cursor
}

func (c *shimCursor) cloneCursor() *shimCursor {
	c.st.cursors++
	return &shimCursor{st: c.st, pos: c.pos}
}

func (c *shimCursor) Read() (*casedata.Case, error) {
	st := c.st
	for c.pos >= len(st.buf) {
		if st.eof {
			return nil, nil
		}
		cc, err := st.src.Read()
		if err != nil {
			return nil, err
		}
		if cc == nil {
			st.eof = true
			return nil, nil
		}
		st.buf = append(st.buf, cc)
	}
	cc := st.buf[c.pos]
	c.pos++
	return cc.Ref(), nil
}

func (c *shimCursor) Close() error {
	st := c.st
	st.cursors--
	if st.cursors > 0 {
		return nil
	}
	for _, cc := range st.buf {
		cc.Unref()
	}
	st.buf = nil
	return st.src.Close()
}
