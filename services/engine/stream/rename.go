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

// renameBackend forwards another reader's cases unchanged.
type renameBackend struct {
	sub *Reader
}

func (b *renameBackend) Read() (*casedata.Case, error) {
	// Failures in sub reach the wrapper through the taint chain.
	return b.sub.Read(), nil
}

func (b *renameBackend) Close() error {
	return b.sub.Close()
}

// Rename wraps a reader in a new identity without changing its cases.
// Useful when an interface requires handing over ownership of a stream
// while the original handle must stop being usable.
func Rename(sub *Reader) *Reader {
	return NewSequential(sub.taint, sub.proto, sub.remaining, &renameBackend{sub: sub})
}
