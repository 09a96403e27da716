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

// Attribute is one named list of string values attached to a variable or a
// dictionary as custom metadata.
type Attribute struct {
	Name   string
	Values []string
}

// AttributeSet is an ordered collection of attributes with case-insensitive
// name lookup.
type AttributeSet struct {
	attrs []Attribute
}

// N returns the number of attributes.
func (s *AttributeSet) N() int { return len(s.attrs) }

func (s *AttributeSet) index(name string) int {
	key := foldName(name)
	for i := range s.attrs {
		if foldName(s.attrs[i].Name) == key {
			return i
		}
	}
	return -1
}

// Set adds the attribute, replacing any existing attribute of the same name.
func (s *AttributeSet) Set(a Attribute) {
	if i := s.index(a.Name); i >= 0 {
		s.attrs[i] = a
		return
	}
	s.attrs = append(s.attrs, a)
}

// Lookup returns the attribute with the given name, if present.
func (s *AttributeSet) Lookup(name string) (Attribute, bool) {
	if i := s.index(name); i >= 0 {
		return s.attrs[i], true
	}
	return Attribute{}, false
}

// Remove deletes the named attribute. Returns false if absent.
func (s *AttributeSet) Remove(name string) bool {
	i := s.index(name)
	if i < 0 {
		return false
	}
	s.attrs = append(s.attrs[:i], s.attrs[i+1:]...)
	return true
}

// All returns the attributes in insertion order.
func (s *AttributeSet) All() []Attribute {
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Clone returns a deep copy.
func (s *AttributeSet) Clone() AttributeSet {
	out := AttributeSet{attrs: make([]Attribute, len(s.attrs))}
	for i, a := range s.attrs {
		vals := make([]string, len(a.Values))
		copy(vals, a.Values)
		out.attrs[i] = Attribute{Name: a.Name, Values: vals}
	}
	return out
}
