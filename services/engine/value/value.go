// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package value implements the single-cell data value used throughout the
// tabular engine.
//
// A Value is either a numeric double or a fixed-width byte string. The width
// is not stored in the Value itself; every operation takes it as an explicit
// argument, the same way the owning caseproto slot describes it. Width 0
// means numeric, width w > 0 means a string of exactly w bytes padded with
// ASCII spaces.
//
// The system-missing sentinel SysMis is the most negative finite double. It
// is a valid IEEE 754 value that cannot result from ordinary computation on
// observed data, which lets a plain float64 carry "no value" in band.
package value

import (
	"bytes"
	"math"
)

// SysMis is the system-missing value for numeric data.
const SysMis = -math.MaxFloat64

// Value is one cell: a numeric double or a fixed-width byte string.
//
// The zero Value is a numeric 0. Values are freely copyable with =, but the
// copy shares the string buffer; use Clone or Copy when both copies may be
// written through.
type Value struct {
	num float64
	str []byte
}

// New returns a Value initialized for the given width: numeric 0 for width 0,
// otherwise width spaces.
func New(width int) Value {
	checkWidth(width)
	if width == 0 {
		return Value{}
	}
	s := make([]byte, width)
	for i := range s {
		s[i] = ' '
	}
	return Value{str: s}
}

// Number returns the numeric content. Only meaningful at width 0.
func (v *Value) Number() float64 {
	return v.num
}

// SetNumber replaces the numeric content. Only meaningful at width 0.
func (v *Value) SetNumber(n float64) {
	v.num = n
}

// Bytes returns the string content. Only meaningful at width > 0. The
// returned slice aliases the Value's buffer and must not be modified unless
// the caller owns the Value exclusively.
func (v *Value) Bytes() []byte {
	return v.str
}

// SetString replaces the string content, padding with spaces or truncating
// to exactly width bytes.
func (v *Value) SetString(s []byte, width int) {
	checkStringWidth(width)
	if len(v.str) != width {
		v.str = make([]byte, width)
	}
	n := copy(v.str, s)
	for i := n; i < width; i++ {
		v.str[i] = ' '
	}
}

// Number returns a numeric Value.
func Number(n float64) Value {
	return Value{num: n}
}

// String returns a string Value of the given width holding s, space padded
// or truncated.
func String(s string, width int) Value {
	v := New(width)
	v.SetString([]byte(s), width)
	return v
}

// Clone returns a deep copy of v at the given width.
func Clone(v Value, width int) Value {
	checkWidth(width)
	if width == 0 {
		return Value{num: v.num}
	}
	s := make([]byte, width)
	copy(s, v.str)
	return Value{str: s}
}

// Copy copies src into dst at the given width. For strings the destination
// buffer is reused when it already has the right width.
func Copy(dst *Value, src *Value, width int) {
	checkWidth(width)
	if width == 0 {
		dst.num = src.num
		return
	}
	if len(dst.str) != width {
		dst.str = make([]byte, width)
	}
	copy(dst.str, src.str)
}

// SetMissing sets v to system-missing for width 0, or to all spaces for a
// string width.
func SetMissing(v *Value, width int) {
	checkWidth(width)
	if width == 0 {
		v.num = SysMis
		return
	}
	if len(v.str) != width {
		v.str = make([]byte, width)
	}
	for i := range v.str {
		v.str[i] = ' '
	}
}

// Equal reports whether a and b hold the same content at the given width.
func Equal(a, b Value, width int) bool {
	checkWidth(width)
	if width == 0 {
		return a.num == b.num
	}
	return bytes.Equal(a.str[:width], b.str[:width])
}

// Compare3Way returns a negative, zero, or positive result ordering a
// against b at the given width. Numeric comparison for width 0, unsigned
// lexicographic byte comparison otherwise.
func Compare3Way(a, b Value, width int) int {
	checkWidth(width)
	if width == 0 {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	}
	return bytes.Compare(a.str[:width], b.str[:width])
}

// Resize adjusts a string value in place from oldWidth to newWidth, space
// padding or truncating. Numeric values are untouched.
func Resize(v *Value, oldWidth, newWidth int) {
	checkWidth(oldWidth)
	checkWidth(newWidth)
	if oldWidth == 0 || newWidth == 0 || oldWidth == newWidth {
		if oldWidth != newWidth && (oldWidth == 0) != (newWidth == 0) {
			// Numeric/string flip: reinitialize for the new width.
			*v = New(newWidth)
		}
		return
	}
	s := make([]byte, newWidth)
	n := copy(s, v.str[:oldWidth])
	for i := n; i < newWidth; i++ {
		s[i] = ' '
	}
	v.str = s
}

// IsResizable reports whether a value of oldWidth can be carried into
// newWidth without loss: widths of the same type, and string narrowing may
// only drop trailing spaces.
func IsResizable(v Value, oldWidth, newWidth int) bool {
	checkWidth(oldWidth)
	checkWidth(newWidth)
	if oldWidth == newWidth {
		return true
	}
	if (oldWidth == 0) != (newWidth == 0) {
		return false
	}
	if newWidth >= oldWidth {
		return true
	}
	for _, b := range v.str[newWidth:oldWidth] {
		if b != ' ' {
			return false
		}
	}
	return true
}

func checkWidth(width int) {
	if width < 0 {
		panic("value: negative width")
	}
}

func checkStringWidth(width int) {
	if width <= 0 {
		panic("value: string operation on numeric width")
	}
}
