// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package caseinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
	"github.com/AleutianAI/TabularFOSS/services/engine/dictionary"
	"github.com/AleutianAI/TabularFOSS/services/engine/stream"
	"github.com/AleutianAI/TabularFOSS/services/engine/value"
)

func TestInitClasses(t *testing.T) {
	d := dictionary.New("UTF-8")
	a := d.CreateVar("a", 0)
	b := d.CreateVar("b", 0)
	b.SetLeave(true)
	s := d.CreateVar("s", 4)
	_ = a
	_ = s

	ci := New()
	ci.MarkForInit(d)

	c := casedata.NewCase(d.Proto())
	c.SetNum(0, 99)
	c.SetNum(1, 99)
	c.SetStr(2, []byte("xxxx"))
	ci.InitVars(c)

	assert.Equal(t, value.SysMis, c.Num(0), "ordinary numeric reinitializes to missing")
	assert.Equal(t, 0.0, c.Num(1), "LEAVE numeric starts at zero")
	assert.Equal(t, []byte("    "), c.Str(2), "strings reinitialize to spaces")
}

func TestLeftValuesCarry(t *testing.T) {
	d := dictionary.New("UTF-8")
	a := d.CreateVar("a", 0)
	total := d.CreateVar("total", 0)
	total.SetLeave(true)
	_ = a

	ci := New()
	ci.MarkForInit(d)

	proto := d.Proto()
	c1 := casedata.NewCase(proto)
	ci.InitVars(c1)
	c1.SetNum(0, 5)
	c1.SetNum(1, c1.Num(1)+c1.Num(0)) // running total
	ci.UpdateLeftVars(c1)

	c2 := casedata.NewCase(proto)
	ci.InitVars(c2)
	assert.Equal(t, value.SysMis, c2.Num(0), "ordinary variable reset")
	assert.Equal(t, 5.0, c2.Num(1), "LEAVE variable carried")
	c1.Unref()
	c2.Unref()
}

func TestPreinitedVarsUntouched(t *testing.T) {
	d := dictionary.New("UTF-8")
	d.CreateVar("src", 0)

	ci := New()
	ci.MarkAsPreinited(d)

	d.CreateVar("tmp", 0)
	ci.MarkForInit(d)

	c := casedata.NewCase(d.Proto())
	c.SetNum(0, 7)
	c.SetNum(1, 7)
	ci.InitVars(c)
	assert.Equal(t, 7.0, c.Num(0), "source variable untouched")
	assert.Equal(t, value.SysMis, c.Num(1))
	c.Unref()
}

func TestScratchVarsLeaveImplicitly(t *testing.T) {
	d := dictionary.New("UTF-8")
	sc := d.CreateVar("#tmp", 0)
	require.True(t, sc.Leave())

	ci := New()
	ci.MarkForInit(d)
	c := casedata.NewCase(d.Proto())
	ci.InitVars(c)
	assert.Equal(t, 0.0, c.Num(0))
	c.Unref()
}

func TestTranslateReader(t *testing.T) {
	d := dictionary.New("UTF-8")
	d.CreateVar("x", 0)
	srcProto := d.Proto()

	ci := New()
	ci.MarkAsPreinited(d)
	d.CreateVar("y", 0)
	ci.MarkForInit(d)
	outProto := d.Proto()

	t.Run("expands and initializes each case", func(t *testing.T) {
		cases := make([]*casedata.Case, 2)
		for i := range cases {
			c := casedata.NewCase(srcProto)
			c.SetNum(0, float64(i+1))
			cases[i] = c
		}
		r := ci.TranslateReader(stream.FromCases(srcProto, cases), outProto)
		for want := 1.0; want <= 2; want++ {
			c := r.Read()
			require.NotNil(t, c)
			assert.Equal(t, want, c.Num(0))
			assert.Equal(t, value.SysMis, c.Num(1))
			c.Unref()
		}
		assert.Nil(t, r.Read())
		require.NoError(t, r.Close())
	})

	t.Run("nothing to initialize elides the translation", func(t *testing.T) {
		empty := New()
		r := empty.TranslateReader(stream.Empty(srcProto), srcProto)
		assert.Nil(t, r.Read())
		require.NoError(t, r.Close())
	})
}

func TestCloneAndClear(t *testing.T) {
	d := dictionary.New("UTF-8")
	lv := d.CreateVar("keep", 0)
	lv.SetLeave(true)

	ci := New()
	ci.MarkForInit(d)
	c := casedata.NewCase(d.Proto())
	c.SetNum(0, 3)
	ci.UpdateLeftVars(c)
	c.Unref()

	dup := ci.Clone()
	fresh := casedata.NewCase(d.Proto())
	dup.InitVars(fresh)
	assert.Equal(t, 3.0, fresh.Num(0), "clone carries saved LEAVE values")
	fresh.Unref()

	ci.Clear()
	ci.MarkForInit(d)
	again := casedata.NewCase(d.Proto())
	again.SetNum(0, 9)
	ci.InitVars(again)
	assert.Equal(t, 0.0, again.Num(0), "clear resets LEAVE values")
	again.Unref()
}
