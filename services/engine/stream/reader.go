// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stream implements lazy, composable case streams.
//
// A Reader is a pull-based forward stream of cases of a fixed caseproto; a
// Writer is the push-based counterpart. Adapters (rename, filters,
// translators, the split grouper) consume their input stream and return a
// new one, so ownership always moves forward and a stream is read by
// exactly one owner.
//
// Every reader carries a Taint. An I/O failure taints the reader and every
// reader derived from it; tainted readers keep yielding whatever cases they
// can so that a pass can run to completion, and the consumer checks the
// taint before using the results.
//
// Thread Safety: none. Streams follow the engine's single-threaded
// cooperative model.
package stream

import (
	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
	"github.com/AleutianAI/TabularFOSS/services/engine/telemetry"
)

// CountUnknown is the case-count hint meaning "not known in advance".
const CountUnknown int64 = -1

// ReaderBackend is the class vector of a reader: it produces cases and
// releases resources. Read returns (nil, nil) at end of stream and
// (nil, err) on an I/O failure.
type ReaderBackend interface {
	Read() (*casedata.Case, error)
	Close() error
}

// CloneableBackend is implemented by backends that support random access
// and can produce an independent cursor cheaply. Backends without it are
// cloned through a buffering shim.
type CloneableBackend interface {
	ReaderBackend
	CloneBackend() ReaderBackend
}

// Reader is a lazy forward stream of cases.
type Reader struct {
	proto     *casedata.Proto
	taint     *Taint
	remaining int64
	backend   ReaderBackend
	closed    bool
}

// NewSequential builds a reader over a backend that supports only forward
// reads. parentTaint may be nil; when given, taint chains from it into the
// new reader. nCases is the remaining-case hint or CountUnknown.
func NewSequential(parentTaint *Taint, proto *casedata.Proto, nCases int64, backend ReaderBackend) *Reader {
	t := NewTaint()
	if parentTaint != nil {
		Chain(parentTaint, t)
	}
	return &Reader{
		proto:     proto,
		taint:     t,
		remaining: nCases,
		backend:   backend,
	}
}

// Proto returns the shape of the cases the reader yields.
func (r *Reader) Proto() *casedata.Proto {
	return r.proto
}

// Taint returns the reader's taint object.
func (r *Reader) Taint() *Taint {
	return r.taint
}

// Tainted reports whether the reader has seen an I/O failure.
func (r *Reader) Tainted() bool {
	return r.taint.Tainted()
}

// Read returns the next case, or nil at end of stream. The caller owns the
// returned reference. An I/O failure taints the reader and ends the stream.
func (r *Reader) Read() *casedata.Case {
	if r.closed {
		return nil
	}
	c, err := r.backend.Read()
	if err != nil {
		r.taint.SetTainted()
		telemetry.AddReaderTaint()
		return nil
	}
	if c != nil {
		if r.remaining > 0 {
			r.remaining--
		}
		telemetry.AddCasesRead(1)
	}
	return c
}

// Close releases the stream. It returns ErrTainted when the stream saw an
// I/O failure at any point; destruction itself always succeeds.
func (r *Reader) Close() error {
	if !r.closed {
		r.closed = true
		if err := r.backend.Close(); err != nil {
			r.taint.SetTainted()
		}
	}
	if r.taint.Tainted() {
		return ErrTainted
	}
	return nil
}

// Clone returns an independent cursor positioned at the same point as r.
// Both readers share one taint. Backends without random access are wrapped
// in a buffering shim on first clone.
func (r *Reader) Clone() *Reader {
	if c, ok := r.backend.(CloneableBackend); ok {
		return &Reader{
			proto:     r.proto,
			taint:     r.taint,
			remaining: r.remaining,
			backend:   c.CloneBackend(),
		}
	}
	cursor := installShim(r)
	return &Reader{
		proto:     r.proto,
		taint:     r.taint,
		remaining: r.remaining,
		backend:   cursor.cloneCursor(),
	}
}

// CountCases returns the number of cases remaining. When the count is not
// known a clone of the reader is drained to compute it; r itself is not
// advanced.
func (r *Reader) CountCases() int64 {
	if r.remaining >= 0 {
		return r.remaining
	}
	probe := r.Clone()
	var n int64
	for {
		c := probe.Read()
		if c == nil {
			break
		}
		c.Unref()
		n++
	}
	probe.Close() //nolint:errcheck // taint is shared with r
	r.remaining = n
	return n
}

// Drain consumes and discards the rest of the stream, then closes it.
func (r *Reader) Drain() error {
	for {
		c := r.Read()
		if c == nil {
			break
		}
		c.Unref()
	}
	return r.Close()
}
