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

import "errors"

// Sentinel errors for dataset and session operations.
var (
	// ErrNoSource indicates a procedure was opened on a dataset with no
	// active data.
	ErrNoSource = errors.New("dataset has no active data")

	// ErrProcActive indicates a procedure is already open on the dataset.
	ErrProcActive = errors.New("a procedure is already open")

	// ErrNoProcActive indicates a commit or discard with no open
	// procedure.
	ErrNoProcActive = errors.New("no procedure is open")

	// ErrDuplicateDataset indicates a session already holds a dataset
	// with that name.
	ErrDuplicateDataset = errors.New("duplicate dataset name")

	// ErrUnknownDataset indicates a lookup of a dataset name not in the
	// session.
	ErrUnknownDataset = errors.New("no dataset with that name")
)
