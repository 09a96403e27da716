// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package casedata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/TabularFOSS/services/engine/value"
)

// TestProtoEqual verifies width-by-width equality.
func TestProtoEqual(t *testing.T) {
	a := NewProto(0, 4, 0)
	b := NewProto(0, 4, 0)
	c := NewProto(0, 5, 0)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(NewProto(0, 4)))
}

// TestProtoConformable allows only string widening.
func TestProtoConformable(t *testing.T) {
	old := NewProto(0, 4, 8)
	assert.True(t, old.ConformableTo(NewProto(0, 4, 8)))
	assert.True(t, old.ConformableTo(NewProto(0, 6, 8)))
	assert.False(t, old.ConformableTo(NewProto(0, 2, 8)), "string narrowing")
	assert.False(t, old.ConformableTo(NewProto(4, 4, 8)), "numeric to string")
	assert.False(t, old.ConformableTo(NewProto(0, 4)), "count mismatch")
}

// TestProtoWithWidthIsNonDestructive verifies the derive-don't-mutate rule.
func TestProtoWithWidthIsNonDestructive(t *testing.T) {
	p := NewProto(0, 4)
	q := p.WithWidth(1, 8)
	assert.Equal(t, 4, p.Width(1))
	assert.Equal(t, 8, q.Width(1))
}

// TestProtoInsertRemove covers shape edits used by the dictionary.
func TestProtoInsertRemove(t *testing.T) {
	p := NewProto(0, 4, 0)
	q := p.Insert(1, 9)
	assert.Equal(t, []int{0, 9, 4, 0}, q.Widths())
	r := q.Remove(1, 2)
	assert.Equal(t, []int{0, 0}, r.Widths())
}

// TestCaseInitialContents verifies new cases start numeric-0 / spaces.
func TestCaseInitialContents(t *testing.T) {
	c := NewCase(NewProto(0, 3))
	assert.Equal(t, 0.0, c.Num(0))
	assert.Equal(t, []byte("   "), c.Str(1))
}

// TestCaseCopyOnWrite exercises Ref/Unref/IsShared/Unshare.
func TestCaseCopyOnWrite(t *testing.T) {
	c := NewCase(NewProto(0))
	c.SetNum(0, 1)

	other := c.Ref()
	require.True(t, c.IsShared())

	// A shared case must reject writes.
	assert.Panics(t, func() { c.SetNum(0, 2) })

	// Unshare yields a private copy; the other reference keeps the old data.
	mine := c.Unshare()
	require.False(t, mine.IsShared())
	mine.SetNum(0, 2)
	assert.Equal(t, 1.0, other.Num(0))
	assert.Equal(t, 2.0, mine.Num(0))
}

// TestCaseUnshareUnsharedIsIdentity verifies the allocation-free fast path.
func TestCaseUnshareUnsharedIsIdentity(t *testing.T) {
	c := NewCase(NewProto(0))
	assert.Same(t, c, c.Unshare())
}

// TestCaseRefUnrefRestoresState covers the reference-safety invariant.
func TestCaseRefUnrefRestoresState(t *testing.T) {
	c := NewCase(NewProto(0))
	c.Ref()
	c.Unref()
	assert.False(t, c.IsShared())
	assert.NotPanics(t, func() { c.SetNum(0, 9) })
}

// TestCaseResize verifies preservation and missing-fill semantics.
func TestCaseResize(t *testing.T) {
	p := NewProto(0, 4, 0)
	c := NewCase(p)
	c.SetNum(0, 7)
	c.SetStr(1, []byte("abcd"))
	c.SetNum(2, 9)

	out := c.Resize(NewProto(0, 6, 0))
	assert.Equal(t, 7.0, out.Num(0))
	// Widened string slot is reset to missing (all spaces).
	assert.Equal(t, []byte("      "), out.Str(1))
	assert.Equal(t, 9.0, out.Num(2))
}

// TestCaseResizeEqualProtoIsIdentity verifies no copy on a same-shape resize.
func TestCaseResizeEqualProtoIsIdentity(t *testing.T) {
	p := NewProto(0, 2)
	c := NewCase(p)
	assert.Same(t, c, c.Resize(NewProto(0, 2)))
}

// TestCaseSetValue verifies value copy at the column width.
func TestCaseSetValue(t *testing.T) {
	c := NewCase(NewProto(5))
	v := value.String("hi", 5)
	c.SetValue(0, &v)
	assert.Equal(t, []byte("hi   "), c.Str(0))
}
