// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import "strings"

// Session holds named datasets, one of which may be active. Dataset names
// compare case-insensitively, like variable names.
type Session struct {
	ctx      *Context
	datasets map[string]*Dataset
	order    []string // fold-cased names in creation order
	active   string   // fold-cased name, empty when none
}

// NewSession creates an empty session.
func NewSession(ctx *Context) *Session {
	return &Session{
		ctx:      ctx,
		datasets: make(map[string]*Dataset),
	}
}

// Context returns the session's execution context.
func (s *Session) Context() *Context { return s.ctx }

func foldName(name string) string {
	return strings.ToLower(name)
}

// CreateDataset adds an empty dataset under name and returns it. The
// first dataset created becomes active.
func (s *Session) CreateDataset(name string) (*Dataset, error) {
	key := foldName(name)
	if _, ok := s.datasets[key]; ok {
		return nil, ErrDuplicateDataset
	}
	ds := NewDataset(s.ctx, name)
	s.datasets[key] = ds
	s.order = append(s.order, key)
	if s.active == "" {
		s.active = key
	}
	return ds, nil
}

// Lookup returns the dataset with the given name, or nil.
func (s *Session) Lookup(name string) *Dataset {
	return s.datasets[foldName(name)]
}

// Active returns the active dataset, or nil when the session is empty.
func (s *Session) Active() *Dataset {
	if s.active == "" {
		return nil
	}
	return s.datasets[s.active]
}

// SetActive makes the named dataset active.
func (s *Session) SetActive(name string) error {
	key := foldName(name)
	if _, ok := s.datasets[key]; !ok {
		return ErrUnknownDataset
	}
	s.active = key
	return nil
}

// Rename gives the dataset called oldName the name newName.
func (s *Session) Rename(oldName, newName string) error {
	oldKey := foldName(oldName)
	newKey := foldName(newName)
	ds, ok := s.datasets[oldKey]
	if !ok {
		return ErrUnknownDataset
	}
	if oldKey == newKey {
		ds.name = newName
		return nil
	}
	if _, taken := s.datasets[newKey]; taken {
		return ErrDuplicateDataset
	}
	delete(s.datasets, oldKey)
	s.datasets[newKey] = ds
	ds.name = newName
	for i, k := range s.order {
		if k == oldKey {
			s.order[i] = newKey
			break
		}
	}
	if s.active == oldKey {
		s.active = newKey
	}
	return nil
}

// Remove destroys the named dataset. Removing the active dataset leaves
// the session with no active dataset.
func (s *Session) Remove(name string) error {
	key := foldName(name)
	ds, ok := s.datasets[key]
	if !ok {
		return ErrUnknownDataset
	}
	ds.Destroy()
	delete(s.datasets, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.active == key {
		s.active = ""
	}
	return nil
}

// Datasets returns the session's datasets in creation order.
func (s *Session) Datasets() []*Dataset {
	out := make([]*Dataset, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.datasets[k])
	}
	return out
}

// Close destroys every dataset.
func (s *Session) Close() {
	for _, k := range s.order {
		s.datasets[k].Destroy()
	}
	s.datasets = make(map[string]*Dataset)
	s.order = nil
	s.active = ""
}
