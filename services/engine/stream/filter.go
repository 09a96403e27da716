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
)

// ExcludeFunc decides whether a case should be dropped from a filtered
// stream. It must not modify or retain the case.
type ExcludeFunc func(*casedata.Case) bool

// filterBackend drops excluded cases, optionally diverting them to a
// writer instead of discarding them.
type filterBackend struct {
	sub      *Reader
	exclude  ExcludeFunc
	diverted *Writer
}

func (b *filterBackend) Read() (*casedata.Case, error) {
	for {
		c := b.sub.Read()
		if c == nil {
			return nil, nil
		}
		if !b.exclude(c) {
			return c, nil
		}
		if b.diverted != nil {
			b.diverted.Write(c)
		} else {
			c.Unref()
		}
	}
}

func (b *filterBackend) Close() error {
	err := b.sub.Close()
	if b.diverted != nil {
		if cerr := b.diverted.Close(); cerr != nil && err == nil {
			err = cerr
		}
		b.diverted = nil
	}
	return err
}

// Filter consumes sub and returns a reader that yields only the cases for
// which exclude returns false. Excluded cases go to diverted when it is
// non-nil; the filter takes ownership of diverted and closes it with the
// returned reader.
func Filter(sub *Reader, exclude ExcludeFunc, diverted *Writer) *Reader {
	if diverted != nil {
		Chain(sub.taint, diverted.taint)
	}
	return NewSequential(sub.taint, sub.proto, CountUnknown, &filterBackend{
		sub:      sub,
		exclude:  exclude,
		diverted: diverted,
	})
}

// FilterWeight consumes sub and drops cases whose weight under dict is
// missing, zero, or negative. The first dropped case sets *warn to false
// when warn is non-nil and *warn is true; dict.CaseWeight shares the same
// one-shot flag, so a procedure warns about bad weights at most once.
func FilterWeight(sub *Reader, dict *dictionary.Dict, warn *bool, diverted *Writer) *Reader {
	weight := dict.Weight()
	if weight == nil {
		return Rename(sub)
	}
	idx := weight.CaseIndex()
	return Filter(sub, func(c *casedata.Case) bool {
		w := c.Num(idx)
		if w > 0 && !weight.IsNumMissing(w, dictionary.MissingAny) {
			return false
		}
		if warn != nil && *warn {
			*warn = false
		}
		return true
	}, diverted)
}

// FilterMissing consumes sub and drops cases in which any of vars holds a
// value missing under class.
func FilterMissing(sub *Reader, vars []*dictionary.Variable, class dictionary.MissingClass, diverted *Writer) *Reader {
	if len(vars) == 0 {
		return Rename(sub)
	}
	kept := make([]*dictionary.Variable, len(vars))
	copy(kept, vars)
	return Filter(sub, func(c *casedata.Case) bool {
		for _, v := range kept {
			if v.IsValueMissing(c.Value(v.CaseIndex()), class) {
				return true
			}
		}
		return false
	}, diverted)
}
