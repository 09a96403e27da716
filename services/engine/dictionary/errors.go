// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dictionary

import "errors"

// Sentinel errors for dictionary operations.
var (
	// ErrDuplicateName indicates a create or rename collided with an
	// existing variable name.
	ErrDuplicateName = errors.New("variable name already in use")

	// ErrInvalidName indicates a name that is not a valid identifier while
	// the dictionary requires identifier names.
	ErrInvalidName = errors.New("invalid variable name")

	// ErrUnknownEncoding indicates an encoding name with no IANA charset
	// registration.
	ErrUnknownEncoding = errors.New("unknown character encoding")

	// ErrNotInDictionary indicates a variable argument that the dictionary
	// does not contain.
	ErrNotInDictionary = errors.New("variable is not in this dictionary")
)
