// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sheet implements the random-access datasheet behind a dataset's
// active data.
//
// A Sheet is a rectangle of values with O(log n) row insertion, deletion,
// and reordering: a treap-based row axis maps logical positions to
// physical storage indices, so structural edits never move cell data.
// Columns live in per-column stores, in memory by default or spilled to
// BadgerDB under a Config with spill enabled.
//
// Thread Safety: none. A sheet belongs to one dataset at a time.
package sheet

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
	"github.com/AleutianAI/TabularFOSS/services/engine/storage/badger"
	"github.com/AleutianAI/TabularFOSS/services/engine/telemetry"
	"github.com/AleutianAI/TabularFOSS/services/engine/value"
)

// Config selects the backing store for a sheet's columns.
type Config struct {
	// SpillDir, when non-empty, stores columns in a BadgerDB under this
	// directory instead of in memory.
	SpillDir string

	// InMemorySpill exercises the BadgerDB path without disk I/O.
	// Useful for testing.
	InMemorySpill bool

	// Logger receives storage diagnostics. Nil disables them.
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with in-memory columns.
func DefaultConfig() Config {
	return Config{}
}

// SpillConfig returns a configuration that spills columns to dir.
func SpillConfig(dir string) Config {
	return Config{SpillDir: dir}
}

func (c Config) spills() bool {
	return c.SpillDir != "" || c.InMemorySpill
}

type column struct {
	width int
	store columnStore
}

// Sheet is a random-access rectangle of values.
type Sheet struct {
	cfg      Config
	db       *badger.DB // nil unless cfg spills
	rows     *axis
	cols     []*column
	nextPhys int64
	proto    *casedata.Proto // lazily rebuilt after column edits
}

// New creates an empty sheet whose columns follow proto.
func New(cfg Config, proto *casedata.Proto) (*Sheet, error) {
	sh := &Sheet{
		cfg:  cfg,
		rows: newAxis(time.Now().UnixNano()),
	}
	if cfg.spills() {
		bcfg := badger.DefaultConfig(cfg.SpillDir)
		bcfg.InMemory = cfg.InMemorySpill
		bcfg.Logger = cfg.Logger
		db, err := badger.Open(bcfg)
		if err != nil {
			return nil, fmt.Errorf("open spill store: %w", err)
		}
		sh.db = db
	}
	for i := 0; i < proto.N(); i++ {
		sh.cols = append(sh.cols, &column{
			width: proto.Width(i),
			store: sh.newStore(proto.Width(i)),
		})
	}
	return sh, nil
}

func (sh *Sheet) newStore(width int) columnStore {
	if sh.db != nil {
		return newBadgerColumn(sh.db, width)
	}
	return newMemoryColumn(width)
}

// Proto returns the shape of the sheet's rows.
func (sh *Sheet) Proto() *casedata.Proto {
	if sh.proto == nil {
		widths := make([]int, len(sh.cols))
		for i, c := range sh.cols {
			widths[i] = c.width
		}
		sh.proto = casedata.NewProto(widths...)
	}
	return sh.proto
}

// NRows returns the number of rows.
func (sh *Sheet) NRows() int64 {
	return sh.rows.size()
}

// NColumns returns the number of columns.
func (sh *Sheet) NColumns() int {
	return len(sh.cols)
}

// Destroy releases all column storage. The sheet must not be used after.
func (sh *Sheet) Destroy() error {
	var first error
	for _, c := range sh.cols {
		if err := c.store.destroy(); err != nil && first == nil {
			first = err
		}
	}
	sh.cols = nil
	if sh.db != nil {
		if err := sh.db.Close(); err != nil && first == nil {
			first = err
		}
		sh.db = nil
	}
	return first
}

func (sh *Sheet) checkRow(row int64) {
	if row < 0 || row >= sh.rows.size() {
		panic(fmt.Sprintf("sheet: row %d out of range [0,%d)", row, sh.rows.size()))
	}
}

func (sh *Sheet) checkCol(col int) {
	if col < 0 || col >= len(sh.cols) {
		panic(fmt.Sprintf("sheet: column %d out of range [0,%d)", col, len(sh.cols)))
	}
}

// GetValue reads the cell at (row, col) into out.
func (sh *Sheet) GetValue(row int64, col int, out *value.Value) error {
	sh.checkRow(row)
	sh.checkCol(col)
	return sh.cols[col].store.get(sh.rows.physAt(row), out)
}

// PutValue writes v into the cell at (row, col).
func (sh *Sheet) PutValue(row int64, col int, v *value.Value) error {
	sh.checkRow(row)
	sh.checkCol(col)
	return sh.cols[col].store.put(sh.rows.physAt(row), v)
}

// GetRow reads a whole row as a fresh case. The caller owns the result.
func (sh *Sheet) GetRow(row int64) (*casedata.Case, error) {
	sh.checkRow(row)
	phys := sh.rows.physAt(row)
	c := casedata.NewCase(sh.Proto())
	for i, col := range sh.cols {
		var v value.Value
		if err := col.store.get(phys, &v); err != nil {
			c.Unref()
			return nil, err
		}
		c.SetValue(i, &v)
	}
	return c, nil
}

// PutRow replaces a whole row, consuming the case reference. The case's
// shape must match the sheet's.
func (sh *Sheet) PutRow(row int64, c *casedata.Case) error {
	sh.checkRow(row)
	defer c.Unref()
	if !c.Proto().Equal(sh.Proto()) {
		panic("sheet: row shape mismatch")
	}
	phys := sh.rows.physAt(row)
	for i, col := range sh.cols {
		if err := col.store.put(phys, c.Value(i)); err != nil {
			return err
		}
	}
	return nil
}

// InsertRows inserts cases as new rows before the given position,
// consuming the case references.
func (sh *Sheet) InsertRows(before int64, cases []*casedata.Case) error {
	if before < 0 || before > sh.rows.size() {
		panic(fmt.Sprintf("sheet: insert position %d out of range [0,%d]", before, sh.rows.size()))
	}
	if len(cases) == 0 {
		return nil
	}
	start := sh.nextPhys
	proto := sh.Proto()
	for off, c := range cases {
		if !c.Proto().Equal(proto) {
			panic("sheet: row shape mismatch")
		}
		phys := start + int64(off)
		for i, col := range sh.cols {
			if err := col.store.put(phys, c.Value(i)); err != nil {
				for _, cc := range cases {
					cc.Unref()
				}
				return err
			}
		}
	}
	for _, c := range cases {
		c.Unref()
	}
	sh.nextPhys += int64(len(cases))
	sh.rows.insertRun(before, start, int64(len(cases)))
	return nil
}

// AppendRow adds a case as the last row, consuming the reference.
func (sh *Sheet) AppendRow(c *casedata.Case) error {
	return sh.InsertRows(sh.rows.size(), []*casedata.Case{c})
}

// DeleteRows removes n rows starting at first. The freed cells stay in
// storage until the sheet is destroyed; physical indices are never reused.
func (sh *Sheet) DeleteRows(first, n int64) {
	if n == 0 {
		return
	}
	sh.checkRow(first)
	sh.checkRow(first + n - 1)
	sh.rows.removeRange(first, n)
}

// MoveRows moves n rows from oldPos to newPos (interpreted after the
// rows are taken out). Only the row axis changes.
func (sh *Sheet) MoveRows(oldPos, n, newPos int64) {
	if n == 0 {
		return
	}
	sh.checkRow(oldPos)
	sh.checkRow(oldPos + n - 1)
	if newPos < 0 || newPos > sh.rows.size()-n {
		panic(fmt.Sprintf("sheet: move target %d out of range", newPos))
	}
	sh.rows.moveRange(oldPos, n, newPos)
}

// InsertColumn adds a column of the given width before position col, with
// every existing row set to init. init must match width; nil means blank.
func (sh *Sheet) InsertColumn(col, width int, init *value.Value) error {
	if col < 0 || col > len(sh.cols) {
		panic(fmt.Sprintf("sheet: insert position %d out of range [0,%d]", col, len(sh.cols)))
	}
	c := &column{width: width, store: sh.newStore(width)}
	if init != nil {
		n := sh.rows.size()
		for row := int64(0); row < n; row++ {
			if err := c.store.put(sh.rows.physAt(row), init); err != nil {
				c.store.destroy() //nolint:errcheck // column is being abandoned
				return err
			}
		}
	}
	sh.cols = append(sh.cols, nil)
	copy(sh.cols[col+1:], sh.cols[col:])
	sh.cols[col] = c
	sh.proto = nil
	return nil
}

// DeleteColumns removes n columns starting at start.
func (sh *Sheet) DeleteColumns(start, n int) error {
	if n == 0 {
		return nil
	}
	sh.checkCol(start)
	sh.checkCol(start + n - 1)
	var first error
	for _, c := range sh.cols[start : start+n] {
		if err := c.store.destroy(); err != nil && first == nil {
			first = err
		}
	}
	sh.cols = append(sh.cols[:start], sh.cols[start+n:]...)
	sh.proto = nil
	return first
}

// MoveColumns moves n columns from oldPos to newPos (interpreted after
// the columns are taken out).
func (sh *Sheet) MoveColumns(oldPos, n, newPos int) {
	if n == 0 {
		return
	}
	sh.checkCol(oldPos)
	sh.checkCol(oldPos + n - 1)
	if newPos < 0 || newPos > len(sh.cols)-n {
		panic(fmt.Sprintf("sheet: move target %d out of range", newPos))
	}
	moved := make([]*column, n)
	copy(moved, sh.cols[oldPos:oldPos+n])
	rest := append(sh.cols[:oldPos], sh.cols[oldPos+n:]...)
	sh.cols = make([]*column, 0, len(rest)+n)
	sh.cols = append(sh.cols, rest[:newPos]...)
	sh.cols = append(sh.cols, moved...)
	sh.cols = append(sh.cols, rest[newPos:]...)
	sh.proto = nil
}

// ConvertFunc rewrites a cell during a column resize. old holds the cell
// at the old width; the result must be valid at the new width.
type ConvertFunc func(old *value.Value, oldWidth int, out *value.Value, newWidth int)

// defaultConvert applies plain value resizing when widths are compatible
// and blanks the cell otherwise.
func defaultConvert(old *value.Value, oldWidth int, out *value.Value, newWidth int) {
	if value.IsResizable(*old, oldWidth, newWidth) {
		*out = value.Clone(*old, oldWidth)
		value.Resize(out, oldWidth, newWidth)
		return
	}
	*out = value.New(newWidth)
}

// ResizeColumn changes the width of column col, rewriting every cell
// through convert (nil for the default conversion). The column gets a
// fresh store; on error the old column is left intact.
func (sh *Sheet) ResizeColumn(col, newWidth int, convert ConvertFunc) error {
	sh.checkCol(col)
	old := sh.cols[col]
	if old.width == newWidth {
		return nil
	}
	if convert == nil {
		convert = defaultConvert
	}

	fresh := &column{width: newWidth, store: sh.newStore(newWidth)}
	n := sh.rows.size()
	for row := int64(0); row < n; row++ {
		phys := sh.rows.physAt(row)
		var oldVal, newVal value.Value
		if err := old.store.get(phys, &oldVal); err != nil {
			fresh.store.destroy() //nolint:errcheck // column is being abandoned
			return err
		}
		convert(&oldVal, old.width, &newVal, newWidth)
		if err := fresh.store.put(phys, &newVal); err != nil {
			fresh.store.destroy() //nolint:errcheck // column is being abandoned
			return err
		}
	}
	old.store.destroy() //nolint:errcheck // data already copied out
	sh.cols[col] = fresh
	sh.proto = nil
	telemetry.AddSheetResize()
	return nil
}
