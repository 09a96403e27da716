// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"fmt"

	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
	"github.com/AleutianAI/TabularFOSS/services/engine/caseinit"
	"github.com/AleutianAI/TabularFOSS/services/engine/casemap"
	"github.com/AleutianAI/TabularFOSS/services/engine/dictionary"
	"github.com/AleutianAI/TabularFOSS/services/engine/sheet"
	"github.com/AleutianAI/TabularFOSS/services/engine/stream"
	"github.com/AleutianAI/TabularFOSS/services/engine/telemetry"
)

// Dataset binds a dictionary to its active data and runs procedures over
// them.
//
// A procedure is the read phase of an analysis: ProcOpen hands out a
// reader over the active data, the analysis consumes it, and ProcCommit
// reconciles any dictionary edits made meanwhile (deleting or reordering
// variables) with the stored data. ProcDiscard abandons the pass instead.
type Dataset struct {
	ctx  *Context
	name string
	dict *dictionary.Dict

	source *stream.Reader // active data, nil until set
	ci     *caseinit.Caseinit

	// Procedure state, nil/false when no procedure is open.
	procOpen   bool
	procReader *stream.Reader
	stage      *casemap.Stage
	openProto  *casedata.Proto
	weightWarn bool
}

// NewDataset creates an empty dataset with a fresh UTF-8 dictionary.
func NewDataset(ctx *Context, name string) *Dataset {
	dict := dictionary.New("UTF-8")
	dict.SetEnhancedAlgorithm(!ctx.Settings().Compatible)
	return &Dataset{
		ctx:  ctx,
		name: name,
		dict: dict,
		ci:   caseinit.New(),
	}
}

// Name returns the dataset's name within its session.
func (ds *Dataset) Name() string { return ds.name }

// Dict returns the dataset's dictionary.
func (ds *Dataset) Dict() *dictionary.Dict { return ds.dict }

// Context returns the dataset's execution context.
func (ds *Dataset) Context() *Context { return ds.ctx }

// HasSource reports whether active data is attached.
func (ds *Dataset) HasSource() bool { return ds.source != nil }

// SetSource attaches active data, consuming the reader. The reader's
// cases must match the dictionary's current shape; variables created
// later are initialized per case by the procedure machinery.
func (ds *Dataset) SetSource(r *stream.Reader) {
	if ds.procOpen {
		panic("session: SetSource during an open procedure")
	}
	if !r.Proto().Equal(ds.dict.Proto()) {
		panic("session: source shape does not match dictionary")
	}
	ds.discardSource()
	ds.source = r
	ds.ci.Clear()
	ds.ci.MarkAsPreinited(ds.dict)
}

func (ds *Dataset) discardSource() {
	if ds.source != nil {
		ds.source.Drain() //nolint:errcheck // data is being discarded
		ds.source = nil
	}
}

// Clear detaches the active data and resets the dictionary.
func (ds *Dataset) Clear() {
	if ds.procOpen {
		panic("session: Clear during an open procedure")
	}
	ds.discardSource()
	ds.dict.Clear()
	ds.ci.Clear()
}

// ProcOpen begins a procedure and returns a reader over the active data,
// with variables added since the source was attached initialized in every
// case. Exactly one procedure may be open at a time.
func (ds *Dataset) ProcOpen() (*stream.Reader, error) {
	return ds.procOpenInternal(false)
}

// ProcOpenFiltering is ProcOpen honoring the dictionary's filter and
// weight: cases where the filter variable is zero or missing are dropped,
// as are cases with missing or non-positive weight. The first bad weight
// emits a warning through the context's sink, once per procedure.
func (ds *Dataset) ProcOpenFiltering() (*stream.Reader, error) {
	return ds.procOpenInternal(true)
}

func (ds *Dataset) procOpenInternal(filtering bool) (*stream.Reader, error) {
	if ds.procOpen {
		return nil, ErrProcActive
	}
	if ds.source == nil {
		return nil, ErrNoSource
	}

	ds.ci.MarkForInit(ds.dict)
	ds.stage = casemap.NewStage(ds.dict)
	ds.openProto = ds.dict.Proto()
	ds.weightWarn = true

	r := ds.ci.TranslateReader(ds.source.Clone(), ds.openProto)
	if limit := ds.dict.CaseLimit(); limit > 0 {
		r = stream.Head(r, int64(limit))
	}
	if filtering {
		if fv := ds.dict.Filter(); fv != nil {
			idx := fv.CaseIndex()
			r = stream.Filter(r, func(c *casedata.Case) bool {
				w := c.Num(idx)
				return w == 0 || fv.IsNumMissing(w, dictionary.MissingAny)
			}, nil)
		}
		if ds.dict.Weight() != nil {
			dict := ds.dict
			r = stream.Filter(r, func(c *casedata.Case) bool {
				before := ds.weightWarn
				w := dict.CaseWeight(c, &ds.weightWarn)
				if before && !ds.weightWarn {
					ds.ctx.warn(fmt.Sprintf("dataset %s: at least one case has a missing or non-positive weight; such cases are excluded from analysis", ds.name))
				}
				return w == 0
			}, nil)
		}
	}

	ds.procOpen = true
	ds.procReader = r
	telemetry.AddProcOpened()
	return stream.Rename(r), nil
}

// ProcCommit ends the procedure and reconciles dictionary edits with the
// active data: variables deleted or reordered during the procedure are
// dropped or moved in every stored case. Variables added during an open
// procedure are not supported and surface as a *casemap.VarAddedError.
func (ds *Dataset) ProcCommit() error {
	if !ds.procOpen {
		return ErrNoProcActive
	}
	ds.procReader.Drain() //nolint:errcheck // taint checked on the source below
	ds.endProc()

	m, err := ds.stage.ToMap()
	if err != nil {
		ds.stage = nil
		return err
	}
	ds.stage = nil

	// Materialize through the configured sheet so committed data reads
	// back at the new layout without re-running initialization.
	pipeline := casemap.TranslateReader(m, ds.ci.TranslateReader(ds.source, ds.openProto))
	ds.source = nil
	sh, err := sheet.FromReader(ds.ctx.sheetConfig(), pipeline)
	if err != nil {
		return fmt.Errorf("commit procedure on dataset %s: %w", ds.name, err)
	}
	ds.source = sheet.MakeReader(sh)

	ds.ci.Clear()
	ds.ci.MarkAsPreinited(ds.dict)
	return nil
}

// ProcDiscard ends the procedure without touching the active data. Any
// dictionary edits made during the procedure are the caller's problem to
// undo; the stored cases keep the layout they had.
func (ds *Dataset) ProcDiscard() {
	if !ds.procOpen {
		return
	}
	ds.procReader.Close() //nolint:errcheck // pass is being abandoned
	ds.endProc()
	ds.stage = nil
	telemetry.AddProcDiscarded()
}

func (ds *Dataset) endProc() {
	ds.procOpen = false
	ds.procReader = nil
}

// Destroy releases the dataset's data.
func (ds *Dataset) Destroy() {
	if ds.procOpen {
		ds.ProcDiscard()
	}
	ds.discardSource()
}
