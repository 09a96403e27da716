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
	"github.com/AleutianAI/TabularFOSS/services/engine/dictionary"
	"github.com/AleutianAI/TabularFOSS/services/engine/value"
)

// SplitGrouper partitions a stream into runs of consecutive cases sharing
// the same values of the dictionary's SPLIT FILE variables. Cases are
// assumed to arrive grouped, as SPSS requires; a value change always opens
// a new group.
//
// Each group is buffered when Next returns it, so a group stays readable
// after the grouper advances past it.
type SplitGrouper struct {
	sub       *Reader
	splitType dictionary.SplitType
	splitIdx  []int
	widths    []int
	pending   *casedata.Case
	started   bool
	done      bool
}

// NewSplitGrouper consumes sub and prepares to iterate its split groups
// under dict's split settings. With no split variables the whole stream is
// one group.
func NewSplitGrouper(sub *Reader, dict *dictionary.Dict) *SplitGrouper {
	splits := dict.SplitVars()
	g := &SplitGrouper{sub: sub, splitType: dict.SplitType()}
	for _, v := range splits {
		g.splitIdx = append(g.splitIdx, v.CaseIndex())
		g.widths = append(g.widths, v.Width())
	}
	return g
}

// SplitType reports how the groups are meant to be presented: separately
// or layered within one table.
func (g *SplitGrouper) SplitType() dictionary.SplitType {
	return g.splitType
}

// Next returns the next group as an independent reader, plus a retained
// exemplar case holding the group's split values. It returns (nil, nil,
// false) after the last group. The caller owns both returns.
func (g *SplitGrouper) Next() (*Reader, *casedata.Case, bool) {
	if g.done {
		return nil, nil, false
	}

	if len(g.splitIdx) == 0 {
		// One group covering the entire stream.
		g.done = true
		first := g.sub.Read()
		if first == nil {
			return nil, nil, false
		}
		exemplar := first.Ref()
		var cases []*casedata.Case
		for c := first; c != nil; c = g.sub.Read() {
			cases = append(cases, c)
		}
		group := FromCases(g.sub.Proto(), cases)
		Chain(g.sub.taint, group.taint)
		return group, exemplar, true
	}

	lead := g.pending
	g.pending = nil
	if lead == nil {
		if g.started {
			g.done = true
			return nil, nil, false
		}
		lead = g.sub.Read()
		if lead == nil {
			g.done = true
			return nil, nil, false
		}
	}
	g.started = true

	exemplar := lead.Ref()
	cases := []*casedata.Case{lead}
	for {
		c := g.sub.Read()
		if c == nil {
			g.done = true
			break
		}
		if !g.sameGroup(exemplar, c) {
			g.pending = c
			break
		}
		cases = append(cases, c)
	}
	group := FromCases(g.sub.Proto(), cases)
	Chain(g.sub.taint, group.taint)
	return group, exemplar, true
}

func (g *SplitGrouper) sameGroup(a, b *casedata.Case) bool {
	for i, idx := range g.splitIdx {
		if !value.Equal(*a.Value(idx), *b.Value(idx), g.widths[i]) {
			return false
		}
	}
	return true
}

// Close releases the grouper and its input stream. Groups already handed
// out stay valid.
func (g *SplitGrouper) Close() error {
	if g.pending != nil {
		g.pending.Unref()
		g.pending = nil
	}
	g.done = true
	return g.sub.Close()
}
