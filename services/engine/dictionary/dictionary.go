// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dictionary implements variables and the dictionary that owns
// them.
//
// A Dict is an ordered collection of variables plus the case-wide settings
// of a dataset: weight and filter designation, SPLIT FILE variables, label,
// documents, vectors, multiple-response sets, variable sets, custom
// attributes, and the character encoding of the data source. Edits emit
// typed change events through a caller-installed Callbacks table.
//
// Ownership: a variable belongs to at most one dictionary, and the
// dictionary holds the sole strong reference. Clone never shares inner
// structure with the original.
//
// Thread Safety:
//
//	None. The engine is single-threaded cooperative; dictionaries must be
//	confined to one goroutine. Callbacks must not mutate the dictionary
//	further (callback dispatch is not reentrant); bulk operations such as
//	Clone and Clear run with callbacks blocked.
package dictionary

import (
	"fmt"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
)

// SplitType describes how SPLIT FILE groups are presented.
type SplitType int

// Split types.
const (
	// SplitNone means the data is not split.
	SplitNone SplitType = iota

	// SplitSeparate produces separate output per group.
	SplitSeparate

	// SplitLayered produces one table with a layer per group.
	SplitLayered
)

// Limits on case-wide dictionary settings.
const (
	// MaxSplits is the maximum number of SPLIT FILE variables.
	MaxSplits = 8

	// MaxLabelLen is the maximum dictionary label length in bytes.
	MaxLabelLen = 60

	// MaxDocLineLen is the maximum document line length in bytes.
	MaxDocLineLen = 80
)

// Callbacks receives dictionary change events. Any field may be nil.
// Handlers must not mutate the dictionary.
type Callbacks struct {
	VarAdded      func(d *Dict, idx int)
	VarsDeleted   func(d *Dict, idx, n int)
	VarMoved      func(d *Dict, newIdx, oldIdx int)
	VarChanged    func(d *Dict, idx int, traits Trait, old *Snapshot)
	WeightChanged func(d *Dict)
	FilterChanged func(d *Dict)
	SplitChanged  func(d *Dict)
}

// Dict is an ordered collection of variables plus case-wide settings.
type Dict struct {
	vars    []*Variable
	nameMap map[string]*Variable

	weight *Variable
	filter *Variable

	splits    []*Variable
	splitType SplitType

	label     string
	documents []string
	vectors   []*Vector
	mrsets    []*MRSet
	varsets   []*VarSet
	attrs     AttributeSet

	encoding       string
	namesMustBeIDs bool
	caseLimit      uint64

	// enhancedAlgorithm mirrors the SET ALGORITHM=ENHANCED mode that
	// changes batch-rename short-name handling.
	enhancedAlgorithm bool

	callbacks *Callbacks
	changedCB func(d *Dict)
	cbBlocked bool

	proto *casedata.Proto // lazily built, nil when stale

	// nUniqueNames drives VAR001-style name generation; reset on delete so
	// freed numbers are reused.
	nUniqueNames uint64
}

// New returns an empty dictionary whose data source uses the given
// character encoding ("" means UTF-8). An unknown encoding name is kept
// verbatim; use SetEncoding to validate.
func New(encoding string) *Dict {
	name, err := canonicalizeEncoding(encoding)
	if err != nil {
		name = encoding
	}
	return &Dict{
		nameMap:           map[string]*Variable{},
		encoding:          name,
		namesMustBeIDs:    true,
		enhancedAlgorithm: true,
	}
}

func canonicalizeEncoding(name string) (string, error) {
	if name == "" {
		return "UTF-8", nil
	}
	e, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	if e == nil {
		// Registered with IANA but not carried by x/text; keep the name.
		return name, nil
	}
	canonical, err := ianaindex.IANA.Name(e)
	if err != nil {
		return name, nil
	}
	return canonical, nil
}

// =============================================================================
// Variables
// =============================================================================

// N returns the number of variables.
func (d *Dict) N() int { return len(d.vars) }

// Var returns the variable at position idx.
func (d *Dict) Var(idx int) *Variable { return d.vars[idx] }

// Vars returns the variables in dictionary order.
func (d *Dict) Vars() []*Variable {
	out := make([]*Variable, len(d.vars))
	copy(out, d.vars)
	return out
}

// Contains reports whether v belongs to d.
func (d *Dict) Contains(v *Variable) bool {
	return v != nil && v.vd != nil && v.vd.dict == d
}

// LookupVar returns the variable with the given name, matched
// case-insensitively, or nil.
func (d *Dict) LookupVar(name string) *Variable {
	return d.nameMap[foldName(name)]
}

// nameIsInsertable reports whether name can become a new variable name.
func (d *Dict) nameIsInsertable(name string) bool {
	if d.LookupVar(name) != nil {
		return false
	}
	if d.namesMustBeIDs && !IsValidID(name) {
		return false
	}
	return true
}

// CreateVar adds a new variable. Duplicate or invalid names are programmer
// errors; use TryCreateVar to recover from collisions.
func (d *Dict) CreateVar(name string, width int) *Variable {
	v, err := d.TryCreateVar(name, width)
	if err != nil {
		panic(fmt.Sprintf("dictionary: CreateVar %q: %v", name, err))
	}
	return v
}

// TryCreateVar adds a new variable, returning ErrDuplicateName or
// ErrInvalidName instead of panicking.
func (d *Dict) TryCreateVar(name string, width int) (*Variable, error) {
	if d.LookupVar(name) != nil {
		return nil, ErrDuplicateName
	}
	if d.namesMustBeIDs && !IsValidID(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	v := NewVariable(name, width)
	d.addVar(v)
	return v, nil
}

// CreateVarWithUniqueName adds a new variable named after hint: the hint is
// sanitized into an identifier and disambiguated with _A, _B, ... suffixes;
// when the hint is absent or unusable the name is VAR001, VAR002, ...
func (d *Dict) CreateVarWithUniqueName(hint string, width int) *Variable {
	v := NewVariable(d.MakeUniqueVarName(hint), width)
	d.addVar(v)
	return v
}

// MakeUniqueVarName devises a variable name unique within d, derived from
// hint when possible. The result never begins with '$', '#', or '@'.
func (d *Dict) MakeUniqueVarName(hint string) string {
	if hint != "" {
		if name, ok := d.makeHintedName(hint); ok {
			return name
		}
	}
	return d.makeNumericName()
}

func (d *Dict) makeHintedName(hint string) (string, bool) {
	root := sanitizeHint(hint)
	if root == "" {
		return "", false
	}
	if d.nameIsInsertable(root) {
		return root, true
	}
	for i := 1; ; i++ {
		suffix := "_" + suffix26Adic(i)
		name := truncateUTF8(root, MaxIDLen-len(suffix)) + suffix
		if d.nameIsInsertable(name) {
			return name, true
		}
	}
}

func (d *Dict) makeNumericName() string {
	for {
		d.nUniqueNames++
		name := fmt.Sprintf("VAR%03d", d.nUniqueNames)
		if d.LookupVar(name) == nil {
			return name
		}
	}
}

func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	s = s[:maxBytes]
	for len(s) > 0 && !IsValidID(s) {
		s = s[:len(s)-1]
	}
	return s
}

// CloneVar adds a deep copy of v (which may belong to another dictionary)
// under v's own name.
func (d *Dict) CloneVar(v *Variable) *Variable {
	return d.CloneVarAs(v, v.Name())
}

// CloneVarAs adds a deep copy of v under the given name. A duplicate name
// is a programmer error; use TryCloneVarAs to recover.
func (d *Dict) CloneVarAs(v *Variable, name string) *Variable {
	nv, err := d.TryCloneVarAs(v, name)
	if err != nil {
		panic(fmt.Sprintf("dictionary: CloneVarAs %q: %v", name, err))
	}
	return nv
}

// TryCloneVarAs adds a deep copy of v under the given name, returning an
// error on collision or invalid name.
func (d *Dict) TryCloneVarAs(v *Variable, name string) (*Variable, error) {
	if d.LookupVar(name) != nil {
		return nil, ErrDuplicateName
	}
	if d.namesMustBeIDs && !IsValidID(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	nv := v.clone()
	nv.name = name
	d.addVar(nv)
	return nv, nil
}

func (d *Dict) addVar(v *Variable) {
	v.vd = &vardict{dict: d, index: len(d.vars)}
	d.vars = append(d.vars, v)
	d.nameMap[foldName(v.name)] = v
	d.invalidateProto()
	d.fireChanged()
	if !d.cbBlocked && d.callbacks != nil && d.callbacks.VarAdded != nil {
		d.callbacks.VarAdded(d, v.vd.index)
	}
}

// DeleteVar removes v from the dictionary. The variable also disappears
// from the split list, from every multiple-response set (sets falling under
// two members are dropped) and variable set, and the weight or filter
// designation is cleared if it referenced v. All vectors are cleared on any
// deletion.
func (d *Dict) DeleteVar(v *Variable) {
	if !d.Contains(v) {
		panic("dictionary: DeleteVar of variable not in dictionary")
	}
	d.deleteRange(v.vd.index, 1)
}

// DeleteConsecutiveVars removes n variables starting at idx, firing a
// single VarsDeleted(idx, n) event for the whole batch.
func (d *Dict) DeleteConsecutiveVars(idx, n int) {
	if idx < 0 || n < 0 || idx+n > len(d.vars) {
		panic("dictionary: DeleteConsecutiveVars out of range")
	}
	if n == 0 {
		return
	}
	d.deleteRange(idx, n)
}

// DeleteScratchVars removes every scratch-class ('#') variable.
func (d *Dict) DeleteScratchVars() {
	for i := 0; i < len(d.vars); {
		if d.vars[i].NameClass() == ScratchName {
			d.deleteRange(i, 1)
		} else {
			i++
		}
	}
}

// deleteRange removes vars[idx : idx+n] and repairs every structure that
// referenced them.
func (d *Dict) deleteRange(idx, n int) {
	d.nUniqueNames = 0

	doomed := make([]*Variable, n)
	copy(doomed, d.vars[idx:idx+n])

	for _, v := range doomed {
		d.unsetSplitVar(v)
		d.unsetMRSetVar(v)
		d.unsetVarSetVar(v)
		if d.weight == v {
			d.SetWeight(nil)
		}
		if d.filter == v {
			d.SetFilter(nil)
		}
	}

	// Deliberately over-strict: any deletion invalidates all vectors.
	d.clearVectorsQuiet()

	for _, v := range doomed {
		delete(d.nameMap, foldName(v.name))
		v.vd = nil
	}
	d.vars = append(d.vars[:idx], d.vars[idx+n:]...)
	d.reindexVars(idx, len(d.vars))
	d.invalidateProto()

	d.fireChanged()
	if !d.cbBlocked && d.callbacks != nil && d.callbacks.VarsDeleted != nil {
		d.callbacks.VarsDeleted(d, idx, n)
	}
}

// reindexVars refreshes back-handles in [from, to) and reports each
// position change to observers.
func (d *Dict) reindexVars(from, to int) {
	for i := from; i < to; i++ {
		v := d.vars[i]
		if v.vd.index == i {
			continue
		}
		old := v.snapshot()
		v.vd.index = i
		if !d.cbBlocked && d.callbacks != nil && d.callbacks.VarChanged != nil {
			d.callbacks.VarChanged(d, i, TraitPosition, old)
		}
	}
}

// ReorderVar moves v to position newIdx, shifting the variables in between.
func (d *Dict) ReorderVar(v *Variable, newIdx int) {
	if !d.Contains(v) {
		panic("dictionary: ReorderVar of variable not in dictionary")
	}
	oldIdx := v.vd.index
	if newIdx == oldIdx {
		return
	}
	d.vars = append(d.vars[:oldIdx], d.vars[oldIdx+1:]...)
	d.vars = append(d.vars[:newIdx], append([]*Variable{v}, d.vars[newIdx:]...)...)
	lo, hi := oldIdx, newIdx
	if lo > hi {
		lo, hi = hi, lo
	}
	d.reindexVars(lo, hi+1)
	d.invalidateProto()
	d.fireChanged()
	if !d.cbBlocked && d.callbacks != nil && d.callbacks.VarMoved != nil {
		d.callbacks.VarMoved(d, newIdx, oldIdx)
	}
}

// ReorderVars moves the given variables, in order, to the front of the
// dictionary; the remaining variables keep their relative order after them.
func (d *Dict) ReorderVars(prefix []*Variable) {
	inPrefix := make(map[*Variable]bool, len(prefix))
	for _, v := range prefix {
		if !d.Contains(v) {
			panic("dictionary: ReorderVars of variable not in dictionary")
		}
		inPrefix[v] = true
	}
	ordered := make([]*Variable, 0, len(d.vars))
	ordered = append(ordered, prefix...)
	for _, v := range d.vars {
		if !inPrefix[v] {
			ordered = append(ordered, v)
		}
	}
	d.vars = ordered
	d.reindexVars(0, len(d.vars))
	d.invalidateProto()
	d.fireChanged()
}

// RenameVar renames v. A collision is a programmer error; use TryRenameVar
// to recover.
func (d *Dict) RenameVar(v *Variable, newName string) {
	if !d.TryRenameVar(v, newName) {
		panic(fmt.Sprintf("dictionary: RenameVar to %q: name in use", newName))
	}
}

// TryRenameVar renames v, returning false and leaving the variable
// unchanged when the new name collides or is invalid.
func (d *Dict) TryRenameVar(v *Variable, newName string) bool {
	if !d.Contains(v) {
		panic("dictionary: TryRenameVar of variable not in dictionary")
	}
	if v.name == newName {
		return true
	}
	if existing := d.LookupVar(newName); existing != nil && existing != v {
		return false
	}
	if d.namesMustBeIDs && !IsValidID(newName) {
		return false
	}
	old := v.snapshot()
	delete(d.nameMap, foldName(v.name))
	v.setNameQuiet(newName)
	d.nameMap[foldName(newName)] = v
	d.varChanged(v, TraitName, old)
	return true
}

// Rename pairs one variable with its new name for batch renaming.
type Rename struct {
	Var     *Variable
	NewName string
}

// RenameVars applies a batch of renames atomically: either every rename
// succeeds, or no variable changes and the error wraps ErrDuplicateName
// naming the offender. Under the enhanced algorithm mode, renamed variables
// lose their legacy short names.
func (d *Dict) RenameVars(renames []Rename) error {
	// Trial run against a scratch copy of the name map.
	scratch := make(map[string]*Variable, len(d.nameMap))
	for k, v := range d.nameMap {
		scratch[k] = v
	}
	for _, r := range renames {
		if !d.Contains(r.Var) {
			return ErrNotInDictionary
		}
		delete(scratch, foldName(r.Var.name))
	}
	for _, r := range renames {
		key := foldName(r.NewName)
		if _, taken := scratch[key]; taken {
			return fmt.Errorf("%w: %q", ErrDuplicateName, r.NewName)
		}
		if d.namesMustBeIDs && !IsValidID(r.NewName) {
			return fmt.Errorf("%w: %q", ErrInvalidName, r.NewName)
		}
		scratch[key] = r.Var
	}

	// Remove every old key before installing any new one, so that swaps
	// ({a->b, b->a}) cannot delete an entry a prior rename just wrote.
	for _, r := range renames {
		delete(d.nameMap, foldName(r.Var.name))
	}
	for _, r := range renames {
		old := r.Var.snapshot()
		r.Var.setNameQuiet(r.NewName)
		d.nameMap[foldName(r.NewName)] = r.Var
		if d.enhancedAlgorithm {
			r.Var.ClearShortNames()
		}
		d.varChanged(r.Var, TraitName, old)
	}
	return nil
}

// =============================================================================
// Case-wide settings
// =============================================================================

// Weight returns the weighting variable, or nil when unweighted.
func (d *Dict) Weight() *Variable { return d.weight }

// SetWeight designates v as the weighting variable, or clears the weight
// when v is nil. v must be a numeric variable in d.
func (d *Dict) SetWeight(v *Variable) {
	if v != nil {
		if !d.Contains(v) {
			panic("dictionary: SetWeight of variable not in dictionary")
		}
		if !v.IsNumeric() {
			panic("dictionary: weight variable must be numeric")
		}
	}
	if d.weight == v {
		return
	}
	d.weight = v
	d.fireChanged()
	if !d.cbBlocked && d.callbacks != nil && d.callbacks.WeightChanged != nil {
		d.callbacks.WeightChanged(d)
	}
}

// CaseWeight returns the weight of case c: 1 when unweighted, otherwise the
// weighting variable's value clamped by ForceValidWeight. The first invalid
// weight observed while *warn is true flips *warn so the caller can emit
// its one-shot warning.
func (d *Dict) CaseWeight(c *casedata.Case, warn *bool) float64 {
	if d.weight == nil {
		return 1
	}
	return d.weight.ForceValidWeight(c.Num(d.weight.CaseIndex()), warn)
}

// Filter returns the filter variable, or nil when unfiltered.
func (d *Dict) Filter() *Variable { return d.filter }

// SetFilter designates v as the filter variable, or clears the filter when
// v is nil. v must be a numeric variable in d.
func (d *Dict) SetFilter(v *Variable) {
	if v != nil {
		if !d.Contains(v) {
			panic("dictionary: SetFilter of variable not in dictionary")
		}
		if !v.IsNumeric() {
			panic("dictionary: filter variable must be numeric")
		}
	}
	if d.filter == v {
		return
	}
	d.filter = v
	d.fireChanged()
	if !d.cbBlocked && d.callbacks != nil && d.callbacks.FilterChanged != nil {
		d.callbacks.FilterChanged(d)
	}
}

// SplitVars returns the SPLIT FILE variables in order.
func (d *Dict) SplitVars() []*Variable {
	out := make([]*Variable, len(d.splits))
	copy(out, d.splits)
	return out
}

// SplitType returns how split groups are presented.
func (d *Dict) SplitType() SplitType { return d.splitType }

// SetSplitVars installs the SPLIT FILE variables, capped at MaxSplits. An
// empty list clears splitting; a non-empty list with SplitNone defaults to
// layered presentation.
func (d *Dict) SetSplitVars(vars []*Variable, typ SplitType) {
	if len(vars) > MaxSplits {
		vars = vars[:MaxSplits]
	}
	for _, v := range vars {
		if !d.Contains(v) {
			panic("dictionary: SetSplitVars of variable not in dictionary")
		}
	}
	d.splits = append(d.splits[:0:0], vars...)
	switch {
	case len(vars) == 0:
		d.splitType = SplitNone
	case typ == SplitNone:
		d.splitType = SplitLayered
	default:
		d.splitType = typ
	}
	d.fireSplitChanged()
}

// ClearSplitVars removes all SPLIT FILE variables.
func (d *Dict) ClearSplitVars() {
	d.SetSplitVars(nil, SplitNone)
}

func (d *Dict) unsetSplitVar(v *Variable) {
	if removeVar(&d.splits, v) {
		if len(d.splits) == 0 {
			d.splitType = SplitNone
		}
		d.fireSplitChanged()
	}
}

func (d *Dict) fireSplitChanged() {
	d.fireChanged()
	if !d.cbBlocked && d.callbacks != nil && d.callbacks.SplitChanged != nil {
		d.callbacks.SplitChanged(d)
	}
}

// Label returns the dictionary label.
func (d *Dict) Label() string { return d.label }

// SetLabel sets the dictionary label, truncated to MaxLabelLen bytes.
func (d *Dict) SetLabel(label string) {
	if len(label) > MaxLabelLen {
		label = truncateUTF8Bytes(label, MaxLabelLen)
	}
	if d.label == label {
		return
	}
	d.label = label
	d.fireChanged()
}

// Documents returns the document lines.
func (d *Dict) Documents() []string {
	out := make([]string, len(d.documents))
	copy(out, d.documents)
	return out
}

// SetDocuments replaces the document lines; each line is truncated to
// MaxDocLineLen bytes.
func (d *Dict) SetDocuments(lines []string) {
	d.documents = d.documents[:0]
	for _, line := range lines {
		d.AddDocument(line)
	}
	d.fireChanged()
}

// AddDocument appends one document line, truncated to MaxDocLineLen bytes.
func (d *Dict) AddDocument(line string) {
	if len(line) > MaxDocLineLen {
		line = truncateUTF8Bytes(line, MaxDocLineLen)
	}
	d.documents = append(d.documents, line)
}

// ClearDocuments removes all document lines.
func (d *Dict) ClearDocuments() {
	d.documents = nil
	d.fireChanged()
}

func truncateUTF8Bytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	s = s[:maxBytes]
	for len(s) > 0 && s[len(s)-1]&0xC0 == 0x80 {
		s = s[:len(s)-1]
	}
	return s
}

// CaseLimit returns the maximum number of cases procedures should read
// (0 means unlimited).
func (d *Dict) CaseLimit() uint64 { return d.caseLimit }

// SetCaseLimit sets the case limit (0 means unlimited).
func (d *Dict) SetCaseLimit(limit uint64) {
	d.caseLimit = limit
	d.fireChanged()
}

// =============================================================================
// Vectors, multiple-response sets, variable sets, attributes
// =============================================================================

// CreateVector adds a vector. Returns false when the name is taken or any
// member is not in d.
func (d *Dict) CreateVector(name string, vars []*Variable) bool {
	if d.LookupVector(name) != nil {
		return false
	}
	for _, v := range vars {
		if !d.Contains(v) {
			return false
		}
	}
	members := make([]*Variable, len(vars))
	copy(members, vars)
	d.vectors = append(d.vectors, &Vector{Name: name, Vars: members})
	d.fireChanged()
	return true
}

// LookupVector returns the vector with the given name, or nil.
func (d *Dict) LookupVector(name string) *Vector {
	key := foldName(name)
	for _, vec := range d.vectors {
		if foldName(vec.Name) == key {
			return vec
		}
	}
	return nil
}

// Vectors returns the vectors in creation order.
func (d *Dict) Vectors() []*Vector {
	out := make([]*Vector, len(d.vectors))
	copy(out, d.vectors)
	return out
}

// ClearVectors removes all vectors.
func (d *Dict) ClearVectors() {
	d.clearVectorsQuiet()
	d.fireChanged()
}

func (d *Dict) clearVectorsQuiet() {
	d.vectors = nil
}

// AddMRSet adds a multiple-response set, replacing any set with the same
// name; the return value reports whether a replacement happened.
func (d *Dict) AddMRSet(s *MRSet) bool {
	key := foldName(s.Name)
	for i, old := range d.mrsets {
		if foldName(old.Name) == key {
			d.mrsets[i] = s
			d.fireChanged()
			return true
		}
	}
	d.mrsets = append(d.mrsets, s)
	d.fireChanged()
	return false
}

// LookupMRSet returns the multiple-response set with the given name, or nil.
func (d *Dict) LookupMRSet(name string) *MRSet {
	key := foldName(name)
	for _, s := range d.mrsets {
		if foldName(s.Name) == key {
			return s
		}
	}
	return nil
}

// MRSets returns the multiple-response sets in creation order.
func (d *Dict) MRSets() []*MRSet {
	out := make([]*MRSet, len(d.mrsets))
	copy(out, d.mrsets)
	return out
}

// DeleteMRSet removes the named set. Returns false if absent.
func (d *Dict) DeleteMRSet(name string) bool {
	key := foldName(name)
	for i, s := range d.mrsets {
		if foldName(s.Name) == key {
			d.mrsets = append(d.mrsets[:i], d.mrsets[i+1:]...)
			d.fireChanged()
			return true
		}
	}
	return false
}

func (d *Dict) unsetMRSetVar(v *Variable) {
	kept := d.mrsets[:0]
	for _, s := range d.mrsets {
		removeVar(&s.Vars, v)
		if len(s.Vars) >= minMRSetVars {
			kept = append(kept, s)
		}
	}
	d.mrsets = kept
}

// AddVarSet adds a variable set, replacing any set with the same name; the
// return value reports whether a replacement happened.
func (d *Dict) AddVarSet(s *VarSet) bool {
	key := foldName(s.Name)
	for i, old := range d.varsets {
		if foldName(old.Name) == key {
			d.varsets[i] = s
			d.fireChanged()
			return true
		}
	}
	d.varsets = append(d.varsets, s)
	d.fireChanged()
	return false
}

// LookupVarSet returns the variable set with the given name, or nil.
func (d *Dict) LookupVarSet(name string) *VarSet {
	key := foldName(name)
	for _, s := range d.varsets {
		if foldName(s.Name) == key {
			return s
		}
	}
	return nil
}

// VarSets returns the variable sets in creation order.
func (d *Dict) VarSets() []*VarSet {
	out := make([]*VarSet, len(d.varsets))
	copy(out, d.varsets)
	return out
}

func (d *Dict) unsetVarSetVar(v *Variable) {
	for _, s := range d.varsets {
		removeVar(&s.Vars, v)
	}
}

// Attributes returns the dictionary-level custom attributes.
func (d *Dict) Attributes() *AttributeSet { return &d.attrs }

// Encoding returns the IANA charset name of the data source.
func (d *Dict) Encoding() string { return d.encoding }

// SetEncoding sets the data-source encoding, validated against the IANA
// charset registry.
func (d *Dict) SetEncoding(name string) error {
	canonical, err := canonicalizeEncoding(name)
	if err != nil {
		return err
	}
	d.encoding = canonical
	d.fireChanged()
	return nil
}

// NamesMustBeIDs reports whether variable names must be valid identifiers.
func (d *Dict) NamesMustBeIDs() bool { return d.namesMustBeIDs }

// SetNamesMustBeIDs relaxes or restores identifier checking of new names.
// Existing names are not revalidated.
func (d *Dict) SetNamesMustBeIDs(must bool) {
	d.namesMustBeIDs = must
}

// SetEnhancedAlgorithm toggles the enhanced-algorithm behaviors (currently:
// batch rename clears legacy short names).
func (d *Dict) SetEnhancedAlgorithm(enhanced bool) {
	d.enhancedAlgorithm = enhanced
}

// =============================================================================
// Callbacks and proto cache
// =============================================================================

// SetCallbacks installs the typed change-event table.
func (d *Dict) SetCallbacks(cb *Callbacks) {
	d.callbacks = cb
}

// SetChanged installs the generic change callback, fired before the
// specific callback on every mutation.
func (d *Dict) SetChanged(fn func(d *Dict)) {
	d.changedCB = fn
}

func (d *Dict) fireChanged() {
	if !d.cbBlocked && d.changedCB != nil {
		d.changedCB(d)
	}
}

// varChanged dispatches a variable edit to observers; called by Variable
// setters through the back-handle.
func (d *Dict) varChanged(v *Variable, traits Trait, old *Snapshot) {
	d.fireChanged()
	if !d.cbBlocked && d.callbacks != nil && d.callbacks.VarChanged != nil {
		d.callbacks.VarChanged(d, v.vd.index, traits, old)
	}
}

// invalidateProto drops the cached caseproto; any width or position change
// calls it.
func (d *Dict) invalidateProto() {
	d.proto = nil
}

// Proto returns a caseproto matching the dictionary's current widths. The
// result is cached until the next width or position change.
func (d *Dict) Proto() *casedata.Proto {
	if d.proto == nil {
		widths := make([]int, len(d.vars))
		for i, v := range d.vars {
			widths[i] = v.width
		}
		d.proto = casedata.NewProto(widths...)
	}
	return d.proto
}

// =============================================================================
// Whole-dictionary operations
// =============================================================================

// Clear removes every variable and every structure that references one.
// Callbacks are blocked for the duration.
func (d *Dict) Clear() {
	d.cbBlocked = true
	defer func() { d.cbBlocked = false }()

	for _, v := range d.vars {
		v.vd = nil
	}
	d.vars = nil
	d.nameMap = map[string]*Variable{}
	d.weight = nil
	d.filter = nil
	d.splits = nil
	d.splitType = SplitNone
	d.vectors = nil
	d.mrsets = nil
	d.varsets = nil
	d.nUniqueNames = 0
	d.invalidateProto()
}

// Clone returns a deep copy of d sharing no inner structure: every variable
// is copied, and the weight, filter, splits, vectors, and sets are
// re-resolved by name against the copies. Callbacks are not cloned.
func (d *Dict) Clone() *Dict {
	out := New(d.encoding)
	out.cbBlocked = true

	for _, v := range d.vars {
		nv := v.clone()
		nv.vd = &vardict{dict: out, index: len(out.vars)}
		out.vars = append(out.vars, nv)
		out.nameMap[foldName(nv.name)] = nv
	}

	resolve := func(v *Variable) *Variable {
		if v == nil {
			return nil
		}
		return out.LookupVar(v.name)
	}
	out.weight = resolve(d.weight)
	out.filter = resolve(d.filter)
	for _, v := range d.splits {
		out.splits = append(out.splits, resolve(v))
	}
	out.splitType = d.splitType
	out.label = d.label
	out.documents = append([]string(nil), d.documents...)
	for _, vec := range d.vectors {
		members := make([]*Variable, len(vec.Vars))
		for i, v := range vec.Vars {
			members[i] = resolve(v)
		}
		out.vectors = append(out.vectors, &Vector{Name: vec.Name, Vars: members})
	}
	for _, s := range d.mrsets {
		members := make([]*Variable, len(s.Vars))
		for i, v := range s.Vars {
			members[i] = resolve(v)
		}
		out.mrsets = append(out.mrsets, &MRSet{
			Name: s.Name, Label: s.Label, Type: s.Type, Vars: members,
		})
	}
	for _, s := range d.varsets {
		members := make([]*Variable, len(s.Vars))
		for i, v := range s.Vars {
			members[i] = resolve(v)
		}
		out.varsets = append(out.varsets, &VarSet{Name: s.Name, Vars: members})
	}
	out.attrs = d.attrs.Clone()
	out.namesMustBeIDs = d.namesMustBeIDs
	out.caseLimit = d.caseLimit
	out.enhancedAlgorithm = d.enhancedAlgorithm

	out.cbBlocked = false
	return out
}
