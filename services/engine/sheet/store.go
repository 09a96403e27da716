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
	"context"
	"encoding/binary"
	"errors"
	"math"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/TabularFOSS/services/engine/storage/badger"
	"github.com/AleutianAI/TabularFOSS/services/engine/telemetry"
	"github.com/AleutianAI/TabularFOSS/services/engine/value"
)

// columnStore holds one column's cells keyed by physical row index. Cells
// never written read back as blank (system-missing or spaces).
type columnStore interface {
	get(phys int64, out *value.Value) error
	put(phys int64, v *value.Value) error
	destroy() error
}

// memoryColumn keeps cells in a slice indexed by physical row. Physical
// indices are allocated monotonically, so the slice only ever grows.
type memoryColumn struct {
	width int
	vals  []value.Value
}

func newMemoryColumn(width int) *memoryColumn {
	return &memoryColumn{width: width}
}

func (c *memoryColumn) get(phys int64, out *value.Value) error {
	if phys >= int64(len(c.vals)) {
		*out = value.New(c.width)
		return nil
	}
	*out = value.Clone(c.vals[phys], c.width)
	return nil
}

func (c *memoryColumn) put(phys int64, v *value.Value) error {
	for int64(len(c.vals)) <= phys {
		c.vals = append(c.vals, value.New(c.width))
	}
	c.vals[phys] = value.Clone(*v, c.width)
	return nil
}

func (c *memoryColumn) destroy() error {
	c.vals = nil
	return nil
}

// badgerColumn keeps cells in a shared BadgerDB, keyed by a per-column
// UUID prefix plus the big-endian physical row index. Numeric cells store
// the float bit pattern; string cells store the raw bytes.
type badgerColumn struct {
	db     *badger.DB
	width  int
	prefix []byte
}

func newBadgerColumn(db *badger.DB, width int) *badgerColumn {
	id := uuid.New()
	telemetry.AddSheetSpill()
	return &badgerColumn{
		db:     db,
		width:  width,
		prefix: id[:],
	}
}

func (c *badgerColumn) key(phys int64) []byte {
	k := make([]byte, len(c.prefix)+8)
	copy(k, c.prefix)
	binary.BigEndian.PutUint64(k[len(c.prefix):], uint64(phys))
	return k
}

func (c *badgerColumn) get(phys int64, out *value.Value) error {
	return c.db.WithReadTxn(context.Background(), func(txn *badgerdb.Txn) error {
		item, err := txn.Get(c.key(phys))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			*out = value.New(c.width)
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(data []byte) error {
			if c.width == 0 {
				if len(data) != 8 {
					return errors.New("sheet: corrupt numeric cell")
				}
				*out = value.Number(math.Float64frombits(binary.BigEndian.Uint64(data)))
				return nil
			}
			*out = value.String(string(data), c.width)
			return nil
		})
	})
}

func (c *badgerColumn) put(phys int64, v *value.Value) error {
	var data []byte
	if c.width == 0 {
		data = make([]byte, 8)
		binary.BigEndian.PutUint64(data, math.Float64bits(v.Number()))
	} else {
		data = append(data, v.Bytes()...)
	}
	return c.db.WithTxn(context.Background(), func(txn *badgerdb.Txn) error {
		return txn.Set(c.key(phys), data)
	})
}

func (c *badgerColumn) destroy() error {
	return c.db.DropPrefix(c.prefix)
}
