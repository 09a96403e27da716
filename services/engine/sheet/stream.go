// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sheet

import (
	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
	"github.com/AleutianAI/TabularFOSS/services/engine/stream"
)

// sheetState shares ownership of a consumed sheet between reader cursors.
type sheetState struct {
	sh      *Sheet
	cursors int
}

type sheetCursor struct {
	st  *sheetState
	row int64
}

func (c *sheetCursor) Read() (*casedata.Case, error) {
	if c.row >= c.st.sh.NRows() {
		return nil, nil
	}
	cc, err := c.st.sh.GetRow(c.row)
	if err != nil {
		return nil, err
	}
	c.row++
	return cc, nil
}

func (c *sheetCursor) Close() error {
	c.st.cursors--
	if c.st.cursors == 0 {
		return c.st.sh.Destroy()
	}
	return nil
}

func (c *sheetCursor) CloneBackend() stream.ReaderBackend {
	c.st.cursors++
	return &sheetCursor{st: c.st, row: c.row}
}

// MakeReader converts the sheet into a case reader, consuming it. The
// sheet is destroyed when the reader (and all its clones) close.
func MakeReader(sh *Sheet) *stream.Reader {
	st := &sheetState{sh: sh, cursors: 1}
	return stream.NewSequential(nil, sh.Proto(), sh.NRows(), &sheetCursor{st: st})
}

// writerBackend appends written cases to a sheet. Converting to a reader
// hands the sheet over; closing without conversion destroys it.
type writerBackend struct {
	sh *Sheet
}

func (b *writerBackend) Write(c *casedata.Case) error {
	return b.sh.AppendRow(c)
}

func (b *writerBackend) Close() error {
	if b.sh == nil {
		return nil
	}
	err := b.sh.Destroy()
	b.sh = nil
	return err
}

func (b *writerBackend) ConvertToReader() (*stream.Reader, error) {
	sh := b.sh
	b.sh = nil
	return MakeReader(sh), nil
}

// NewWriter builds a case writer whose cases accumulate in a sheet, so
// large streams can spill to disk under a spilling Config. The writer
// supports MakeReader.
func NewWriter(cfg Config, proto *casedata.Proto) (*stream.Writer, error) {
	sh, err := New(cfg, proto)
	if err != nil {
		return nil, err
	}
	return stream.NewWriter(proto, &writerBackend{sh: sh}), nil
}

// FromReader drains a case reader into a new sheet, consuming the reader.
// A tainted input yields an error and no sheet.
func FromReader(cfg Config, r *stream.Reader) (*Sheet, error) {
	sh, err := New(cfg, r.Proto())
	if err != nil {
		r.Close() //nolint:errcheck // reader is being abandoned
		return nil, err
	}
	for {
		c := r.Read()
		if c == nil {
			break
		}
		if err := sh.AppendRow(c); err != nil {
			sh.Destroy() //nolint:errcheck // sheet is being abandoned
			r.Close()    //nolint:errcheck // reader is being abandoned
			return nil, err
		}
	}
	if err := r.Close(); err != nil {
		sh.Destroy() //nolint:errcheck // sheet is being abandoned
		return nil, err
	}
	return sh, nil
}
