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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
	"github.com/AleutianAI/TabularFOSS/services/engine/dictionary"
	"github.com/AleutianAI/TabularFOSS/services/engine/stream"
)

func threeVarDict() (*dictionary.Dict, [3]*dictionary.Variable) {
	d := dictionary.New("UTF-8")
	a := d.CreateVar("a", 0)
	b := d.CreateVar("b", 0)
	c := d.CreateVar("c", 0)
	return d, [3]*dictionary.Variable{a, b, c}
}

func abcCase(proto *casedata.Proto) *casedata.Case {
	c := casedata.NewCase(proto)
	for i := 0; i < proto.N(); i++ {
		c.SetNum(i, float64(i+1))
	}
	return c
}

func TestStage(t *testing.T) {
	t.Run("unchanged dictionary elides the map", func(t *testing.T) {
		d, _ := threeVarDict()
		stage := NewStage(d)
		m, err := stage.ToMap()
		require.NoError(t, err)
		assert.Nil(t, m, "identity must be a nil map")
	})

	t.Run("deletion narrows staged cases", func(t *testing.T) {
		d, vars := threeVarDict()
		oldProto := d.Proto()
		stage := NewStage(d)
		d.DeleteVar(vars[1])

		m, err := stage.ToMap()
		require.NoError(t, err)
		require.NotNil(t, m)

		out := m.Execute(abcCase(oldProto))
		require.Equal(t, 2, out.Proto().N())
		assert.Equal(t, 1.0, out.Num(0))
		assert.Equal(t, 3.0, out.Num(1))
		out.Unref()
	})

	t.Run("reorder remaps staged cases", func(t *testing.T) {
		d, vars := threeVarDict()
		oldProto := d.Proto()
		stage := NewStage(d)
		d.ReorderVars([]*dictionary.Variable{vars[2]})

		m, err := stage.ToMap()
		require.NoError(t, err)
		require.NotNil(t, m)

		out := m.Execute(abcCase(oldProto))
		assert.Equal(t, 3.0, out.Num(0))
		assert.Equal(t, 1.0, out.Num(1))
		assert.Equal(t, 2.0, out.Num(2))
		out.Unref()
	})

	t.Run("variable added after staging is a typed error", func(t *testing.T) {
		d, _ := threeVarDict()
		stage := NewStage(d)
		d.CreateVar("late", 0)

		_, err := stage.ToMap()
		var added *VarAddedError
		require.True(t, errors.As(err, &added))
		assert.Equal(t, "late", added.Name)
	})
}

func TestByName(t *testing.T) {
	t.Run("matches variables across dictionaries", func(t *testing.T) {
		old, _ := threeVarDict()
		dst := dictionary.New("UTF-8")
		dst.CreateVar("c", 0)
		dst.CreateVar("a", 0)

		m, err := ByName(old, dst)
		require.NoError(t, err)
		require.NotNil(t, m)

		out := m.Execute(abcCase(old.Proto()))
		assert.Equal(t, 3.0, out.Num(0))
		assert.Equal(t, 1.0, out.Num(1))
		out.Unref()
	})

	t.Run("missing variable fails", func(t *testing.T) {
		old, _ := threeVarDict()
		dst := dictionary.New("UTF-8")
		dst.CreateVar("z", 0)
		_, err := ByName(old, dst)
		assert.Error(t, err)
	})

	t.Run("width mismatch fails", func(t *testing.T) {
		old, _ := threeVarDict()
		dst := dictionary.New("UTF-8")
		dst.CreateVar("a", 4)
		_, err := ByName(old, dst)
		assert.Error(t, err)
	})
}

func TestProject(t *testing.T) {
	d, vars := threeVarDict()
	m := Project(d, []*dictionary.Variable{vars[2], vars[0]})
	require.NotNil(t, m)
	out := m.Execute(abcCase(d.Proto()))
	require.Equal(t, 2, out.Proto().N())
	assert.Equal(t, 3.0, out.Num(0))
	assert.Equal(t, 1.0, out.Num(1))
	out.Unref()

	t.Run("full projection in order is identity", func(t *testing.T) {
		assert.Nil(t, Project(d, d.Vars()))
	})
}

func TestTranslateReader(t *testing.T) {
	d, vars := threeVarDict()
	proto := d.Proto()
	cases := []*casedata.Case{abcCase(proto), abcCase(proto)}
	r := TranslateReader(Project(d, vars[1:2]), stream.FromCases(proto, cases))

	var got []float64
	for {
		c := r.Read()
		if c == nil {
			break
		}
		require.Equal(t, 1, c.Proto().N())
		got = append(got, c.Num(0))
		c.Unref()
	}
	assert.Equal(t, []float64{2, 2}, got)
	require.NoError(t, r.Close())

	t.Run("identity map returns the reader unchanged", func(t *testing.T) {
		src := stream.Empty(proto)
		assert.Same(t, src, TranslateReader(nil, src))
	})
}
