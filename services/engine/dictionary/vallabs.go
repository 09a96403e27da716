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
	"sort"

	"github.com/AleutianAI/TabularFOSS/services/engine/value"
)

// ValueLabel pairs one data value with its UTF-8 label.
type ValueLabel struct {
	Value value.Value
	Label string
}

// ValueLabels maps values to labels, kept ordered by value so iteration is
// deterministic.
type ValueLabels struct {
	width  int
	labels []ValueLabel
}

// NewValueLabels returns an empty label set for the given width.
func NewValueLabels(width int) *ValueLabels {
	return &ValueLabels{width: width}
}

// Width returns the width the labels apply to.
func (vl *ValueLabels) Width() int { return vl.width }

// N returns the number of labels.
func (vl *ValueLabels) N() int { return len(vl.labels) }

// search returns the insertion slot for v and whether it is present.
func (vl *ValueLabels) search(v value.Value) (int, bool) {
	i := sort.Search(len(vl.labels), func(i int) bool {
		return value.Compare3Way(vl.labels[i].Value, v, vl.width) >= 0
	})
	found := i < len(vl.labels) && value.Equal(vl.labels[i].Value, v, vl.width)
	return i, found
}

// Add inserts a label for v. Returns false if v is already labeled.
func (vl *ValueLabels) Add(v value.Value, label string) bool {
	i, found := vl.search(v)
	if found {
		return false
	}
	vl.labels = append(vl.labels, ValueLabel{})
	copy(vl.labels[i+1:], vl.labels[i:])
	vl.labels[i] = ValueLabel{Value: value.Clone(v, vl.width), Label: label}
	return true
}

// Replace sets the label for v, inserting or overwriting.
func (vl *ValueLabels) Replace(v value.Value, label string) {
	if i, found := vl.search(v); found {
		vl.labels[i].Label = label
		return
	}
	vl.Add(v, label)
}

// Remove deletes the label for v. Returns false if v is unlabeled.
func (vl *ValueLabels) Remove(v value.Value) bool {
	i, found := vl.search(v)
	if !found {
		return false
	}
	vl.labels = append(vl.labels[:i], vl.labels[i+1:]...)
	return true
}

// Find returns the label for v, if any.
func (vl *ValueLabels) Find(v value.Value) (string, bool) {
	if i, found := vl.search(v); found {
		return vl.labels[i].Label, true
	}
	return "", false
}

// All returns the labels in value order. The slice is a copy; the values
// inside alias the set and must not be modified.
func (vl *ValueLabels) All() []ValueLabel {
	out := make([]ValueLabel, len(vl.labels))
	copy(out, vl.labels)
	return out
}

// CanSetWidth reports whether every labeled value survives the width change.
func (vl *ValueLabels) CanSetWidth(newWidth int) bool {
	if len(vl.labels) == 0 {
		return true
	}
	if (vl.width == 0) != (newWidth == 0) {
		return false
	}
	for i := range vl.labels {
		if !value.IsResizable(vl.labels[i].Value, vl.width, newWidth) {
			return false
		}
	}
	return true
}

// SetWidth resizes every labeled value. The caller must have checked
// CanSetWidth.
func (vl *ValueLabels) SetWidth(newWidth int) {
	for i := range vl.labels {
		value.Resize(&vl.labels[i].Value, vl.width, newWidth)
	}
	vl.width = newWidth
}

// Clone returns a deep copy.
func (vl *ValueLabels) Clone() *ValueLabels {
	out := &ValueLabels{width: vl.width}
	for _, l := range vl.labels {
		out.labels = append(out.labels, ValueLabel{
			Value: value.Clone(l.Value, vl.width),
			Label: l.Label,
		})
	}
	return out
}
