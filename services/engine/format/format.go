// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package format implements display format specifications.
//
// A Spec is a (type, width, decimals) triple such as F8.2 or A10. The type
// comes from a closed enumeration compatible with the SPSS command language.
// Each type belongs to a category that controls defaulting and whether the
// format can follow a variable across a width change.
package format

import (
	"fmt"
)

// Type identifies one format from the closed enumeration.
type Type int

// Format types. The order groups them by category.
const (
	// Basic numeric formats.
	F Type = iota
	Comma
	Dot
	Dollar
	Pct
	E

	// Custom currency formats.
	CCA
	CCB
	CCC
	CCD
	CCE

	// Legacy numeric formats.
	N
	Z

	// Binary and hexadecimal formats.
	P
	PK
	IB
	PIB
	PIBHex
	RB
	RBHex

	// Date formats.
	Date
	ADate
	EDate
	JDate
	SDate
	QYr
	MoYr
	WkYr
	DateTime
	YMDHMS

	// Time and interval formats.
	MTime
	Time
	DTime

	// Date component formats.
	WkDay
	Month

	// String formats.
	A
	AHex

	nTypes
)

// Category classifies format types for defaulting and resizing decisions.
type Category int

// Format categories.
const (
	CatBasic Category = iota
	CatCustom
	CatLegacy
	CatBinary
	CatHex
	CatDate
	CatTime
	CatDateComponent
	CatString
)

// props describes the static limits of one format type.
type props struct {
	name   string
	cat    Category
	minW   int
	maxW   int
	maxD   int
	string bool
}

var typeProps = [nTypes]props{
	F:      {name: "F", cat: CatBasic, minW: 1, maxW: 40, maxD: 16},
	Comma:  {name: "COMMA", cat: CatBasic, minW: 1, maxW: 40, maxD: 16},
	Dot:    {name: "DOT", cat: CatBasic, minW: 1, maxW: 40, maxD: 16},
	Dollar: {name: "DOLLAR", cat: CatBasic, minW: 2, maxW: 40, maxD: 16},
	Pct:    {name: "PCT", cat: CatBasic, minW: 2, maxW: 40, maxD: 16},
	E:      {name: "E", cat: CatBasic, minW: 6, maxW: 40, maxD: 16},

	CCA: {name: "CCA", cat: CatCustom, minW: 2, maxW: 40, maxD: 16},
	CCB: {name: "CCB", cat: CatCustom, minW: 2, maxW: 40, maxD: 16},
	CCC: {name: "CCC", cat: CatCustom, minW: 2, maxW: 40, maxD: 16},
	CCD: {name: "CCD", cat: CatCustom, minW: 2, maxW: 40, maxD: 16},
	CCE: {name: "CCE", cat: CatCustom, minW: 2, maxW: 40, maxD: 16},

	N: {name: "N", cat: CatLegacy, minW: 1, maxW: 40, maxD: 16},
	Z: {name: "Z", cat: CatLegacy, minW: 1, maxW: 40, maxD: 16},

	P:      {name: "P", cat: CatBinary, minW: 1, maxW: 16, maxD: 16},
	PK:     {name: "PK", cat: CatBinary, minW: 1, maxW: 16, maxD: 16},
	IB:     {name: "IB", cat: CatBinary, minW: 1, maxW: 8, maxD: 16},
	PIB:    {name: "PIB", cat: CatBinary, minW: 1, maxW: 8, maxD: 16},
	PIBHex: {name: "PIBHEX", cat: CatHex, minW: 2, maxW: 16},
	RB:     {name: "RB", cat: CatBinary, minW: 2, maxW: 8},
	RBHex:  {name: "RBHEX", cat: CatHex, minW: 4, maxW: 16},

	Date:     {name: "DATE", cat: CatDate, minW: 9, maxW: 40},
	ADate:    {name: "ADATE", cat: CatDate, minW: 8, maxW: 40},
	EDate:    {name: "EDATE", cat: CatDate, minW: 8, maxW: 40},
	JDate:    {name: "JDATE", cat: CatDate, minW: 5, maxW: 40},
	SDate:    {name: "SDATE", cat: CatDate, minW: 8, maxW: 40},
	QYr:      {name: "QYR", cat: CatDate, minW: 4, maxW: 40},
	MoYr:     {name: "MOYR", cat: CatDate, minW: 6, maxW: 40},
	WkYr:     {name: "WKYR", cat: CatDate, minW: 6, maxW: 40},
	DateTime: {name: "DATETIME", cat: CatDate, minW: 17, maxW: 40, maxD: 16},
	YMDHMS:   {name: "YMDHMS", cat: CatDate, minW: 12, maxW: 40, maxD: 16},

	MTime: {name: "MTIME", cat: CatTime, minW: 4, maxW: 40, maxD: 16},
	Time:  {name: "TIME", cat: CatTime, minW: 5, maxW: 40, maxD: 16},
	DTime: {name: "DTIME", cat: CatTime, minW: 8, maxW: 40, maxD: 16},

	WkDay: {name: "WKDAY", cat: CatDateComponent, minW: 2, maxW: 40},
	Month: {name: "MONTH", cat: CatDateComponent, minW: 3, maxW: 40},

	A:    {name: "A", cat: CatString, minW: 1, maxW: 32767, string: true},
	AHex: {name: "AHEX", cat: CatHex, minW: 2, maxW: 65534, string: true},
}

// Name returns the SPSS-language name of the type, e.g. "DOLLAR".
func (t Type) Name() string {
	return typeProps[t].name
}

// Category returns the category the type belongs to.
func (t Type) Category() Category {
	return typeProps[t].cat
}

// IsString reports whether the type applies to string data.
func (t Type) IsString() bool {
	return typeProps[t].string
}

// MinWidth and MaxWidth return the width limits for the type.
func (t Type) MinWidth() int { return typeProps[t].minW }

// MaxWidth returns the maximum width allowed for the type.
func (t Type) MaxWidth() int { return typeProps[t].maxW }

// MaxDecimals returns the maximum number of decimal places for the type.
func (t Type) MaxDecimals() int { return typeProps[t].maxD }

// Spec is a complete format specification.
type Spec struct {
	Type Type
	W    int
	D    int
}

// NewSpec returns a checked Spec, or an error describing the violation.
func NewSpec(t Type, w, d int) (Spec, error) {
	s := Spec{Type: t, W: w, D: d}
	if err := s.Check(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// MustSpec is NewSpec for statically-known formats; it panics on a bad spec.
func MustSpec(t Type, w, d int) Spec {
	s, err := NewSpec(t, w, d)
	if err != nil {
		panic(err)
	}
	return s
}

// Default returns the default format for a variable of the given width:
// F8.2 for numeric, A<w> for strings.
func Default(width int) Spec {
	if width == 0 {
		return Spec{Type: F, W: 8, D: 2}
	}
	return Spec{Type: A, W: width}
}

// Check validates the spec against its type's limits.
func (s Spec) Check() error {
	if s.Type < 0 || s.Type >= nTypes {
		return fmt.Errorf("format: unknown type %d", int(s.Type))
	}
	p := typeProps[s.Type]
	if s.W < p.minW || s.W > p.maxW {
		return fmt.Errorf("format: width %d out of range %d..%d for %s",
			s.W, p.minW, p.maxW, p.name)
	}
	if s.D < 0 || s.D > p.maxD {
		return fmt.Errorf("format: %d decimals out of range 0..%d for %s",
			s.D, p.maxD, p.name)
	}
	if s.D > s.W {
		return fmt.Errorf("format: %d decimals do not fit in width %d", s.D, s.W)
	}
	return nil
}

// VarWidth returns the width a variable must have to use this format:
// 0 for numeric formats, W for A, W/2 for AHEX.
func (s Spec) VarWidth() int {
	switch {
	case !s.Type.IsString():
		return 0
	case s.Type == AHex:
		return s.W / 2
	default:
		return s.W
	}
}

// CheckWidthCompat reports whether the spec may be used with a variable of
// the given width.
func (s Spec) CheckWidthCompat(width int) error {
	if err := s.Check(); err != nil {
		return err
	}
	if s.VarWidth() != width {
		return fmt.Errorf("format %s is incompatible with variable width %d",
			s, width)
	}
	return nil
}

// Resize adjusts s to be valid for a variable of the given width. Returns
// true if the spec changed. A numeric/string flip resets to the default
// format; a string width change keeps the type and adjusts W; a numeric
// width "change" (always 0 to 0) is a no-op.
func (s *Spec) Resize(width int) bool {
	switch {
	case (width > 0) != s.Type.IsString():
		*s = Default(width)
	case width > 0:
		if s.Type == AHex {
			s.W = width * 2
		} else {
			s.W = width
		}
	default:
		return false
	}
	return true
}

// Equal reports exact equality of type, width, and decimals.
func (s Spec) Equal(o Spec) bool {
	return s == o
}

// String renders the spec in command-language form, e.g. "F8.2" or "A10".
func (s Spec) String() string {
	if s.D > 0 {
		return fmt.Sprintf("%s%d.%d", s.Type.Name(), s.W, s.D)
	}
	return fmt.Sprintf("%s%d", s.Type.Name(), s.W)
}
