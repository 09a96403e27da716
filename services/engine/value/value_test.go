// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewNumeric verifies a width-0 value starts as numeric zero.
func TestNewNumeric(t *testing.T) {
	v := New(0)
	assert.Equal(t, 0.0, v.Number())
	assert.Nil(t, v.Bytes())
}

// TestNewString verifies a string value starts as all spaces.
func TestNewString(t *testing.T) {
	v := New(4)
	assert.Equal(t, []byte("    "), v.Bytes())
}

// TestSetString pads and truncates to the exact width.
func TestSetString(t *testing.T) {
	t.Run("pads short input", func(t *testing.T) {
		v := New(6)
		v.SetString([]byte("ab"), 6)
		assert.Equal(t, []byte("ab    "), v.Bytes())
	})

	t.Run("truncates long input", func(t *testing.T) {
		v := New(3)
		v.SetString([]byte("abcdef"), 3)
		assert.Equal(t, []byte("abc"), v.Bytes())
	})
}

// TestSetMissing verifies the missing representations for both types.
func TestSetMissing(t *testing.T) {
	n := Number(42)
	SetMissing(&n, 0)
	assert.Equal(t, SysMis, n.Number())

	s := String("abc", 3)
	SetMissing(&s, 3)
	assert.Equal(t, []byte("   "), s.Bytes())
}

// TestEqualAndCompare covers numeric and unsigned byte ordering.
func TestEqualAndCompare(t *testing.T) {
	t.Run("numeric", func(t *testing.T) {
		a, b := Number(1), Number(2)
		assert.False(t, Equal(a, b, 0))
		assert.Negative(t, Compare3Way(a, b, 0))
		assert.Positive(t, Compare3Way(b, a, 0))
		assert.Zero(t, Compare3Way(a, a, 0))
	})

	t.Run("string bytes are unsigned", func(t *testing.T) {
		lo := String("a", 1)
		hi := New(1)
		hi.SetString([]byte{0xFF}, 1)
		assert.Negative(t, Compare3Way(lo, hi, 1))
	})
}

// TestCloneIsDeep verifies the string buffer does not alias after Clone.
func TestCloneIsDeep(t *testing.T) {
	a := String("abc", 3)
	b := Clone(a, 3)
	b.SetString([]byte("xyz"), 3)
	assert.Equal(t, []byte("abc"), a.Bytes())
}

// TestCopyReusesBuffer verifies Copy writes into an existing buffer.
func TestCopyReusesBuffer(t *testing.T) {
	src := String("hello", 5)
	dst := New(5)
	buf := dst.Bytes()
	Copy(&dst, &src, 5)
	require.Equal(t, []byte("hello"), dst.Bytes())
	assert.Equal(t, &buf[0], &dst.Bytes()[0])
}

// TestResize verifies widening pads and narrowing truncates.
func TestResize(t *testing.T) {
	v := String("abc", 3)
	Resize(&v, 3, 5)
	assert.Equal(t, []byte("abc  "), v.Bytes())
	Resize(&v, 5, 2)
	assert.Equal(t, []byte("ab"), v.Bytes())
}

// TestIsResizable covers the lossless-narrowing rule.
func TestIsResizable(t *testing.T) {
	v := String("ab", 5) // "ab   "
	assert.True(t, IsResizable(v, 5, 2))
	assert.False(t, IsResizable(v, 5, 1))
	assert.True(t, IsResizable(v, 5, 9))
	assert.False(t, IsResizable(v, 5, 0))
	assert.False(t, IsResizable(Number(1), 0, 5))
}
