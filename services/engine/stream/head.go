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

// headBackend ends the stream after n cases.
type headBackend struct {
	sub       *Reader
	remaining int64
}

func (b *headBackend) Read() (*casedata.Case, error) {
	if b.remaining <= 0 {
		return nil, nil
	}
	c := b.sub.Read()
	if c != nil {
		b.remaining--
	}
	return c, nil
}

func (b *headBackend) Close() error {
	return b.sub.Close()
}

// Head consumes sub and returns a reader yielding at most n cases.
// Procedures use it to honor a dictionary's case limit.
func Head(sub *Reader, n int64) *Reader {
	hint := CountUnknown
	if sub.remaining >= 0 {
		hint = sub.remaining
		if hint > n {
			hint = n
		}
	}
	return NewSequential(sub.taint, sub.proto, hint, &headBackend{sub: sub, remaining: n})
}
