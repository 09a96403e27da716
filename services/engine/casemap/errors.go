// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package casemap

import "fmt"

// VarAddedError reports a variable created after its dictionary was
// staged. Staged maps can only narrow or reorder a layout; cases of the
// old layout hold no data for new variables.
type VarAddedError struct {
	Name string
}

func (e *VarAddedError) Error() string {
	return fmt.Sprintf("casemap: variable %q added after staging", e.Name)
}
