// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package format

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeFromName returns the format type named s, case-insensitively.
func TypeFromName(s string) (Type, bool) {
	upper := strings.ToUpper(s)
	for t, p := range typeProps {
		if p.name == upper {
			return Type(t), true
		}
	}
	return 0, false
}

// Parse reads a specification in SPSS syntax, e.g. "F8.2", "A10",
// "DOLLAR12.2". The result is validity-checked.
func Parse(s string) (Spec, error) {
	trimmed := strings.TrimSpace(s)
	i := 0
	for i < len(trimmed) && !isDigit(trimmed[i]) {
		i++
	}
	name, rest := trimmed[:i], trimmed[i:]
	t, ok := TypeFromName(name)
	if !ok {
		return Spec{}, fmt.Errorf("format: unknown type %q in %q", name, s)
	}

	var w, d int
	var err error
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		if d, err = strconv.Atoi(rest[dot+1:]); err != nil {
			return Spec{}, fmt.Errorf("format: bad decimal count in %q", s)
		}
		rest = rest[:dot]
	}
	if rest == "" {
		return Spec{}, fmt.Errorf("format: missing width in %q", s)
	}
	if w, err = strconv.Atoi(rest); err != nil {
		return Spec{}, fmt.Errorf("format: bad width in %q", s)
	}
	return NewSpec(t, w, d)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
