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

import (
	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
	"github.com/AleutianAI/TabularFOSS/services/engine/telemetry"
)

// WriterBackend accepts cases pushed into a writer. Write takes ownership
// of the case reference even on error.
type WriterBackend interface {
	Write(*casedata.Case) error
	Close() error
}

// ConvertibleBackend is implemented by writer backends whose accumulated
// cases can be turned into a reader. Conversion destroys the backend.
type ConvertibleBackend interface {
	WriterBackend
	ConvertToReader() (*Reader, error)
}

// Writer is a push-based sink of cases of a fixed caseproto.
type Writer struct {
	proto   *casedata.Proto
	taint   *Taint
	backend WriterBackend
	closed  bool
}

// NewWriter builds a writer over a backend.
func NewWriter(proto *casedata.Proto, backend WriterBackend) *Writer {
	return &Writer{
		proto:   proto,
		taint:   NewTaint(),
		backend: backend,
	}
}

// Proto returns the shape of the cases the writer accepts.
func (w *Writer) Proto() *casedata.Proto {
	return w.proto
}

// Taint returns the writer's taint object.
func (w *Writer) Taint() *Taint {
	return w.taint
}

// Tainted reports whether the writer has seen an I/O failure.
func (w *Writer) Tainted() bool {
	return w.taint.Tainted()
}

// Write appends a case, taking ownership of the reference. Once the writer
// is tainted further cases are silently dropped.
func (w *Writer) Write(c *casedata.Case) {
	if w.closed || w.taint.Tainted() {
		c.Unref()
		return
	}
	if err := w.backend.Write(c); err != nil {
		w.taint.SetTainted()
		return
	}
	telemetry.AddCasesWritten(1)
}

// Close flushes and releases the writer. It returns ErrTainted when any
// write failed.
func (w *Writer) Close() error {
	if !w.closed {
		w.closed = true
		if err := w.backend.Close(); err != nil {
			w.taint.SetTainted()
		}
	}
	if w.taint.Tainted() {
		return ErrTainted
	}
	return nil
}

// MakeReader converts the writer into a reader over everything written so
// far. The writer is destroyed either way. Backends that cannot replay
// their cases return ErrNotConvertible.
//
// The returned reader inherits the writer's taint, so write failures are
// visible to downstream consumers.
func (w *Writer) MakeReader() (*Reader, error) {
	if w.closed {
		return nil, ErrNotConvertible
	}
	w.closed = true
	cb, ok := w.backend.(ConvertibleBackend)
	if !ok {
		w.backend.Close() //nolint:errcheck // backend is being abandoned
		return nil, ErrNotConvertible
	}
	r, err := cb.ConvertToReader()
	if err != nil {
		w.taint.SetTainted()
		return nil, err
	}
	Chain(w.taint, r.taint)
	return r, nil
}

// memoryWriterBackend accumulates cases in memory.
type memoryWriterBackend struct {
	proto *casedata.Proto
	cases []*casedata.Case
}

func (b *memoryWriterBackend) Write(c *casedata.Case) error {
	b.cases = append(b.cases, c)
	return nil
}

func (b *memoryWriterBackend) Close() error {
	for _, c := range b.cases {
		c.Unref()
	}
	b.cases = nil
	return nil
}

func (b *memoryWriterBackend) ConvertToReader() (*Reader, error) {
	cases := b.cases
	b.cases = nil
	return FromCases(b.proto, cases), nil
}

// NewMemoryWriter builds a writer that keeps all cases in memory and
// supports MakeReader.
func NewMemoryWriter(proto *casedata.Proto) *Writer {
	return NewWriter(proto, &memoryWriterBackend{proto: proto})
}
