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

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxIDLen is the maximum length of a variable name in bytes.
const MaxIDLen = 64

// NameClass categorizes a variable by the first character of its name.
type NameClass int

// Name classes.
const (
	// OrdinaryName is a user variable.
	OrdinaryName NameClass = iota

	// SystemName is a '$'-prefixed system variable.
	SystemName

	// ScratchName is a '#'-prefixed scratch variable. Scratch variables
	// always have LEAVE semantics.
	ScratchName
)

// ClassOf returns the name class derived from the first character.
func ClassOf(name string) NameClass {
	switch {
	case strings.HasPrefix(name, "$"):
		return SystemName
	case strings.HasPrefix(name, "#"):
		return ScratchName
	default:
		return OrdinaryName
	}
}

// isID1 reports whether r may start an identifier.
func isID1(r rune) bool {
	return unicode.IsLetter(r) || r == '@' || r == '#' || r == '$'
}

// isIDN reports whether r may continue an identifier.
func isIDN(r rune) bool {
	return isID1(r) || unicode.IsDigit(r) || r == '.' || r == '_'
}

// IsValidID reports whether name is a syntactically valid variable name.
func IsValidID(name string) bool {
	if name == "" || len(name) > MaxIDLen || !utf8.ValidString(name) {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if !isID1(r) {
				return false
			}
		} else if !isIDN(r) {
			return false
		}
	}
	// A trailing '.' ends a command in the SPSS language.
	return !strings.HasSuffix(name, ".")
}

// foldName normalizes a name for case-insensitive lookup.
func foldName(name string) string {
	return strings.ToLower(name)
}

// sanitizeHint reduces an arbitrary string to a usable variable-name root.
// The first code point must be an identifier-start letter (never '$', '#',
// or '@'); later code points must be identifier continuations. Each run of
// dropped interior code points collapses to a single '_'; leading and
// trailing junk is dropped entirely. Returns "" if nothing usable remains.
func sanitizeHint(hint string) string {
	if len(hint) > MaxIDLen {
		hint = hint[:MaxIDLen]
		for !utf8.ValidString(hint) {
			hint = hint[:len(hint)-1]
		}
	}

	var b strings.Builder
	dropped := false
	for _, r := range hint {
		var keep bool
		if b.Len() == 0 {
			keep = isID1(r) && r != '$' && r != '#' && r != '@'
		} else {
			keep = isIDN(r)
		}
		if keep {
			if dropped {
				b.WriteByte('_')
				dropped = false
			}
			b.WriteRune(r)
		} else if b.Len() > 0 {
			dropped = true
		}
	}
	return b.String()
}

// suffix26Adic renders n >= 1 in the bijective base-26 alphabet:
// 1 => "A", 26 => "Z", 27 => "AA", 28 => "AB", ...
func suffix26Adic(n int) string {
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}
