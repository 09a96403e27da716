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
	"github.com/AleutianAI/TabularFOSS/services/engine/format"
	"github.com/AleutianAI/TabularFOSS/services/engine/value"
)

// Measure is the level of measurement of a variable.
type Measure int

// Measurement levels.
const (
	MeasureUnknown Measure = iota
	MeasureNominal
	MeasureOrdinal
	MeasureScale
)

// Role describes how a variable participates in modeling procedures.
type Role int

// Variable roles.
const (
	RoleInput Role = iota
	RoleTarget
	RoleBoth
	RoleNone
	RolePartition
	RoleSplit
)

// Alignment is the display alignment of a variable's column.
type Alignment int

// Display alignments.
const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Trait is a bitmask naming which variable attributes an edit touched. It
// accompanies every VarChanged dictionary event.
type Trait uint

// Trait bits.
const (
	TraitName Trait = 1 << iota
	TraitWidth
	TraitLabel
	TraitPrintFormat
	TraitWriteFormat
	TraitMissingValues
	TraitValueLabels
	TraitMeasure
	TraitRole
	TraitAlignment
	TraitDisplayWidth
	TraitLeave
	TraitAttributes
	TraitPosition
)

// Variable holds the metadata for one column.
//
// A variable belongs to at most one dictionary at a time; while owned, every
// public mutation notifies the dictionary, which fires its VarChanged
// callback with the trait mask and an immutable pre-edit snapshot.
type Variable struct {
	name         string
	width        int
	print, write format.Spec
	miss         MissingValues
	labels       *ValueLabels // nil when no labels are set
	label        string
	measure      Measure
	role         Role
	displayWidth int
	alignment    Alignment
	leave        bool
	shortNames   []string
	attrs        AttributeSet

	// vd is the back-handle to the owning dictionary slot; nil while the
	// variable is outside any dictionary.
	vd *vardict
}

// vardict is the dictionary's handle on a contained variable.
type vardict struct {
	dict  *Dict
	index int
}

// NewVariable returns a free-standing variable with default formats,
// measure, and alignment for its width.
func NewVariable(name string, width int) *Variable {
	if width < 0 {
		panic("dictionary: negative variable width")
	}
	v := &Variable{
		name:  name,
		width: width,
		print: format.Default(width),
		write: format.Default(width),
		miss:  NewMissingValues(width),
	}
	if width > 0 {
		v.measure = MeasureNominal
		v.alignment = AlignLeft
	} else {
		v.measure = MeasureUnknown
		v.alignment = AlignRight
	}
	v.displayWidth = defaultDisplayWidth(width)
	return v
}

// defaultDisplayWidth returns the GUI column width for a data width.
func defaultDisplayWidth(width int) int {
	if width == 0 {
		return 8
	}
	if width > 32 {
		return 32
	}
	return width
}

// Snapshot is an immutable copy of a variable's externally visible state,
// delivered to VarChanged observers as the pre-edit image.
type Snapshot struct {
	Name          string
	Width         int
	Label         string
	PrintFormat   format.Spec
	WriteFormat   format.Spec
	MissingValues MissingValues
	ValueLabels   []ValueLabel
	Measure       Measure
	Role          Role
	Alignment     Alignment
	DisplayWidth  int
	Leave         bool
}

func (v *Variable) snapshot() *Snapshot {
	s := &Snapshot{
		Name:          v.name,
		Width:         v.width,
		Label:         v.label,
		PrintFormat:   v.print,
		WriteFormat:   v.write,
		MissingValues: v.miss.Clone(),
		Measure:       v.measure,
		Role:          v.role,
		Alignment:     v.alignment,
		DisplayWidth:  v.displayWidth,
		Leave:         v.Leave(),
	}
	if v.labels != nil {
		s.ValueLabels = v.labels.All()
	}
	return s
}

// changed reports an edit to the owning dictionary, if any.
func (v *Variable) changed(traits Trait, old *Snapshot) {
	if v.vd != nil {
		v.vd.dict.varChanged(v, traits, old)
	}
}

// Name returns the variable's name.
func (v *Variable) Name() string { return v.name }

// NameClass returns the class derived from the name's first character.
func (v *Variable) NameClass() NameClass { return ClassOf(v.name) }

// setNameQuiet renames without notification; the dictionary uses it so its
// name map stays consistent with the rename.
func (v *Variable) setNameQuiet(name string) {
	v.name = name
}

// SetName renames a free-standing variable. Variables inside a dictionary
// must be renamed through Dict.RenameVar so the name map stays consistent;
// calling SetName on an owned variable panics.
func (v *Variable) SetName(name string) {
	if v.vd != nil {
		panic("dictionary: SetName on owned variable; use Dict.RenameVar")
	}
	v.name = name
}

// Width returns 0 for numeric variables, else the string width.
func (v *Variable) Width() int { return v.width }

// IsNumeric reports whether the variable is numeric.
func (v *Variable) IsNumeric() bool { return v.width == 0 }

// IsString reports whether the variable holds string data.
func (v *Variable) IsString() bool { return v.width > 0 }

// SetWidth changes the variable's width. Missing values, value labels, and
// the print and write formats are each resized when their contents permit
// and reset otherwise. The trait mask on the resulting VarChanged event
// reflects exactly what changed.
func (v *Variable) SetWidth(newWidth int) {
	if newWidth < 0 {
		panic("dictionary: negative variable width")
	}
	if newWidth == v.width {
		return
	}
	old := v.snapshot()
	traits := TraitWidth | TraitMissingValues

	if v.miss.IsResizable(newWidth) {
		v.miss.Resize(newWidth)
	} else {
		v.miss = NewMissingValues(newWidth)
	}

	if v.labels != nil {
		if v.labels.CanSetWidth(newWidth) {
			v.labels.SetWidth(newWidth)
		} else {
			v.labels = nil
		}
		traits |= TraitValueLabels
	}

	if v.print.Resize(newWidth) {
		traits |= TraitPrintFormat
	}
	if v.write.Resize(newWidth) {
		traits |= TraitWriteFormat
	}

	v.width = newWidth
	if v.vd != nil {
		v.vd.dict.invalidateProto()
	}
	v.changed(traits, old)
}

// PrintFormat returns the display format.
func (v *Variable) PrintFormat() format.Spec { return v.print }

// WriteFormat returns the output format.
func (v *Variable) WriteFormat() format.Spec { return v.write }

// SetPrintFormat installs a new display format. Panics on a format that is
// incompatible with the variable's width; compute formats with
// format.Default or Spec.Resize first.
func (v *Variable) SetPrintFormat(s format.Spec) {
	if err := s.CheckWidthCompat(v.width); err != nil {
		panic(err)
	}
	if v.print.Equal(s) {
		return
	}
	old := v.snapshot()
	v.print = s
	v.changed(TraitPrintFormat, old)
}

// SetWriteFormat installs a new output format, with the same contract as
// SetPrintFormat.
func (v *Variable) SetWriteFormat(s format.Spec) {
	if err := s.CheckWidthCompat(v.width); err != nil {
		panic(err)
	}
	if v.write.Equal(s) {
		return
	}
	old := v.snapshot()
	v.write = s
	v.changed(TraitWriteFormat, old)
}

// SetBothFormats installs the same format for print and write.
func (v *Variable) SetBothFormats(s format.Spec) {
	if err := s.CheckWidthCompat(v.width); err != nil {
		panic(err)
	}
	if v.print.Equal(s) && v.write.Equal(s) {
		return
	}
	old := v.snapshot()
	v.print = s
	v.write = s
	v.changed(TraitPrintFormat|TraitWriteFormat, old)
}

// Label returns the variable label, or "" if unset.
func (v *Variable) Label() string { return v.label }

// SetLabel sets or clears the variable label.
func (v *Variable) SetLabel(label string) {
	if v.label == label {
		return
	}
	old := v.snapshot()
	v.label = label
	v.changed(TraitLabel, old)
}

// MissingValues returns the user-missing specification.
func (v *Variable) MissingValues() *MissingValues { return &v.miss }

// SetMissingValues installs a new user-missing specification, which must
// match the variable's width.
func (v *Variable) SetMissingValues(mv MissingValues) {
	if mv.Width() != v.width {
		panic("dictionary: missing values of wrong width")
	}
	if v.miss.Equal(&mv) {
		return
	}
	old := v.snapshot()
	v.miss = mv.Clone()
	v.changed(TraitMissingValues, old)
}

// IsValueMissing reports whether val is missing for this variable under the
// requested class.
func (v *Variable) IsValueMissing(val *value.Value, class MissingClass) bool {
	return v.miss.IsMissing(val, class)
}

// IsNumMissing reports whether the numeric value n is missing under the
// requested class. Only meaningful for numeric variables.
func (v *Variable) IsNumMissing(n float64, class MissingClass) bool {
	val := value.Number(n)
	return v.miss.IsMissing(&val, class)
}

// ValueLabels returns the label set, or nil if none is attached.
func (v *Variable) ValueLabels() *ValueLabels { return v.labels }

// AddValueLabel labels val. Returns false if val is already labeled.
func (v *Variable) AddValueLabel(val value.Value, label string) bool {
	old := v.snapshot()
	if v.labels == nil {
		v.labels = NewValueLabels(v.width)
	}
	if !v.labels.Add(val, label) {
		return false
	}
	v.changed(TraitValueLabels, old)
	return true
}

// ReplaceValueLabel labels val, overwriting any existing label.
func (v *Variable) ReplaceValueLabel(val value.Value, label string) {
	old := v.snapshot()
	if v.labels == nil {
		v.labels = NewValueLabels(v.width)
	}
	v.labels.Replace(val, label)
	v.changed(TraitValueLabels, old)
}

// ClearValueLabels drops all value labels.
func (v *Variable) ClearValueLabels() {
	if v.labels == nil {
		return
	}
	old := v.snapshot()
	v.labels = nil
	v.changed(TraitValueLabels, old)
}

// LookupValueLabel returns the label for val, if any.
func (v *Variable) LookupValueLabel(val value.Value) (string, bool) {
	if v.labels == nil {
		return "", false
	}
	return v.labels.Find(val)
}

// Measure returns the measurement level.
func (v *Variable) Measure() Measure { return v.measure }

// SetMeasure sets the measurement level.
func (v *Variable) SetMeasure(m Measure) {
	if v.measure == m {
		return
	}
	old := v.snapshot()
	v.measure = m
	v.changed(TraitMeasure, old)
}

// Role returns the modeling role.
func (v *Variable) Role() Role { return v.role }

// SetRole sets the modeling role.
func (v *Variable) SetRole(r Role) {
	if v.role == r {
		return
	}
	old := v.snapshot()
	v.role = r
	v.changed(TraitRole, old)
}

// Alignment returns the display alignment.
func (v *Variable) Alignment() Alignment { return v.alignment }

// SetAlignment sets the display alignment.
func (v *Variable) SetAlignment(a Alignment) {
	if v.alignment == a {
		return
	}
	old := v.snapshot()
	v.alignment = a
	v.changed(TraitAlignment, old)
}

// DisplayWidth returns the GUI column width.
func (v *Variable) DisplayWidth() int { return v.displayWidth }

// SetDisplayWidth sets the GUI column width.
func (v *Variable) SetDisplayWidth(w int) {
	if v.displayWidth == w {
		return
	}
	old := v.snapshot()
	v.displayWidth = w
	v.changed(TraitDisplayWidth, old)
}

// Leave reports whether the variable's value carries from case to case.
// Scratch-class variables always leave; the flag is a computed property of
// the name class, not separately settable state.
func (v *Variable) Leave() bool {
	return v.leave || v.NameClass() == ScratchName
}

// SetLeave requests LEAVE semantics. For scratch variables the request is
// recorded but Leave stays true regardless.
func (v *Variable) SetLeave(leave bool) {
	if v.leave == leave {
		return
	}
	old := v.snapshot()
	v.leave = leave
	v.changed(TraitLeave, old)
}

// ShortNames returns the legacy short names used by file formats.
func (v *Variable) ShortNames() []string {
	out := make([]string, len(v.shortNames))
	copy(out, v.shortNames)
	return out
}

// SetShortNames replaces the legacy short-name list.
func (v *Variable) SetShortNames(names []string) {
	v.shortNames = make([]string, len(names))
	copy(v.shortNames, names)
}

// ClearShortNames drops the legacy short names.
func (v *Variable) ClearShortNames() {
	v.shortNames = nil
}

// Attributes returns the variable's custom attributes for reading and
// writing. Attribute edits do not fire dictionary events.
func (v *Variable) Attributes() *AttributeSet { return &v.attrs }

// Dict returns the owning dictionary, or nil.
func (v *Variable) Dict() *Dict {
	if v.vd == nil {
		return nil
	}
	return v.vd.dict
}

// DictIndex returns the variable's position in its dictionary. Panics if
// the variable is not owned.
func (v *Variable) DictIndex() int {
	if v.vd == nil {
		panic("dictionary: DictIndex on free-standing variable")
	}
	return v.vd.index
}

// CaseIndex returns the index of the variable's value within a case of the
// dictionary's proto. It equals DictIndex in this engine.
func (v *Variable) CaseIndex() int {
	return v.DictIndex()
}

// ForceValidWeight clamps a weight value: missing (user or system) or
// non-positive weights become 0. The first time that happens while *warn is
// true, *warn flips to false so the caller can emit its one-shot warning.
func (v *Variable) ForceValidWeight(w float64, warn *bool) float64 {
	invalid := w <= 0
	if !invalid {
		if v != nil {
			invalid = v.IsNumMissing(w, MissingAny)
		} else {
			invalid = w == value.SysMis
		}
	}
	if !invalid {
		return w
	}
	if warn != nil && *warn {
		*warn = false
	}
	return 0
}

// clone returns a deep copy of v outside any dictionary.
func (v *Variable) clone() *Variable {
	out := &Variable{
		name:         v.name,
		width:        v.width,
		print:        v.print,
		write:        v.write,
		miss:         v.miss.Clone(),
		label:        v.label,
		measure:      v.measure,
		role:         v.role,
		displayWidth: v.displayWidth,
		alignment:    v.alignment,
		leave:        v.leave,
		attrs:        v.attrs.Clone(),
	}
	if v.labels != nil {
		out.labels = v.labels.Clone()
	}
	if len(v.shortNames) > 0 {
		out.shortNames = make([]string, len(v.shortNames))
		copy(out.shortNames, v.shortNames)
	}
	return out
}

// Clone returns a deep copy of v that belongs to no dictionary.
func (v *Variable) Clone() *Variable {
	return v.clone()
}
