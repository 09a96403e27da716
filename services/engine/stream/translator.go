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

// TranslateFunc maps an input case to an output case, taking ownership of
// the input reference. It may return the input itself (possibly modified
// after Unshare) or a fresh case of the output shape.
type TranslateFunc func(*casedata.Case) *casedata.Case

// translateBackend applies a translation to each case of a subordinate
// reader.
type translateBackend struct {
	sub       *Reader
	translate TranslateFunc
	close     func()
}

func (b *translateBackend) Read() (*casedata.Case, error) {
	c := b.sub.Read()
	if c == nil {
		return nil, nil
	}
	return b.translate(c), nil
}

func (b *translateBackend) Close() error {
	err := b.sub.Close()
	if b.close != nil {
		b.close()
		b.close = nil
	}
	return err
}

// Translate consumes sub and returns a reader that yields translate(case)
// for each of its cases, with the given output shape. close, if non-nil,
// runs when the translated reader is destroyed.
//
// The translated reader is cloneable only through buffering: translations
// may carry state, so each input case is translated exactly once.
func Translate(sub *Reader, outProto *casedata.Proto, translate TranslateFunc, close func()) *Reader {
	return NewSequential(sub.taint, outProto, sub.remaining, &translateBackend{
		sub:       sub,
		translate: translate,
		close:     close,
	})
}

// statelessBackend is the cloneable variant for pure translations. Each
// cursor owns its own clone of the subordinate reader.
type statelessBackend struct {
	sub       *Reader
	translate TranslateFunc
}

func (b *statelessBackend) Read() (*casedata.Case, error) {
	c := b.sub.Read()
	if c == nil {
		return nil, nil
	}
	return b.translate(c), nil
}

func (b *statelessBackend) Close() error {
	return b.sub.Close()
}

func (b *statelessBackend) CloneBackend() ReaderBackend {
	return &statelessBackend{sub: b.sub.Clone(), translate: b.translate}
}

// TranslateStateless is like Translate for pure, position-independent
// translations. Clones of the result clone the subordinate reader instead
// of buffering translated cases.
func TranslateStateless(sub *Reader, outProto *casedata.Proto, translate TranslateFunc) *Reader {
	return NewSequential(sub.taint, outProto, sub.remaining, &statelessBackend{
		sub:       sub,
		translate: translate,
	})
}
