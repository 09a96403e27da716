// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session ties dictionaries, data streams, and procedures into
// datasets, and manages named datasets within a session.
//
// Everything a procedure needs arrives through an explicit Context: the
// logger, the user-message sink, and settings. There is no package-level
// mutable state, so two sessions can run side by side.
package session

import (
	"github.com/AleutianAI/TabularFOSS/pkg/logging"
	"github.com/AleutianAI/TabularFOSS/services/engine/sheet"
)

// Severity classifies user-facing messages.
type Severity int

const (
	// Note is informational output.
	Note Severity = iota
	// Warning reports a recoverable data problem.
	Warning
	// Problem reports a failed operation.
	Problem
)

// String returns the display name of the severity.
func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Problem:
		return "error"
	default:
		return "unknown"
	}
}

// Msg is one user-facing message.
type Msg struct {
	Severity Severity
	Text     string
}

// Sink receives user-facing messages. Unlike the log, these address the
// person running the analysis, in their terms.
type Sink interface {
	Emit(Msg)
}

// loggerSink routes messages into the structured log.
type loggerSink struct {
	logger *logging.Logger
}

func (s loggerSink) Emit(m Msg) {
	switch m.Severity {
	case Warning:
		s.logger.Warn(m.Text)
	case Problem:
		s.logger.Error(m.Text)
	default:
		s.logger.Info(m.Text)
	}
}

// memorySink collects messages for inspection. Useful for testing.
type memorySink struct {
	msgs []Msg
}

func (s *memorySink) Emit(m Msg) {
	s.msgs = append(s.msgs, m)
}

// NewMemorySink returns a Sink that records messages, and an accessor for
// what it has seen so far.
func NewMemorySink() (Sink, func() []Msg) {
	s := &memorySink{}
	return s, func() []Msg {
		out := make([]Msg, len(s.msgs))
		copy(out, s.msgs)
		return out
	}
}

// Settings holds tunables shared by a context's datasets.
type Settings struct {
	// Sheet configures the backing store for materialized data.
	Sheet sheet.Config

	// Compatible selects SET ALGORITHM=COMPATIBLE behaviors; new
	// dictionaries default to the enhanced algorithms otherwise.
	Compatible bool

	// SaferMode disallows operations that touch the host system, such as
	// spilling to arbitrary directories.
	SaferMode bool
}

// Context carries the execution environment for datasets and procedures.
type Context struct {
	logger   *logging.Logger
	sink     Sink
	settings Settings
}

// NewContext builds a context. A nil logger falls back to the default
// stderr logger; a nil sink routes messages into the logger.
func NewContext(logger *logging.Logger, sink Sink, settings Settings) *Context {
	if logger == nil {
		logger = logging.Default()
	}
	if sink == nil {
		sink = loggerSink{logger: logger}
	}
	return &Context{logger: logger, sink: sink, settings: settings}
}

// Logger returns the context's structured logger.
func (c *Context) Logger() *logging.Logger { return c.logger }

// Sink returns the user-message sink.
func (c *Context) Sink() Sink { return c.sink }

// Settings returns the context's settings.
func (c *Context) Settings() Settings { return c.settings }

// sheetConfig returns the sheet configuration with SaferMode applied: in
// safer mode any configured spill directory is ignored and spill data stays
// in memory.
func (c *Context) sheetConfig() sheet.Config {
	cfg := c.settings.Sheet
	if c.settings.SaferMode && cfg.SpillDir != "" {
		cfg.SpillDir = ""
		cfg.InMemorySpill = true
	}
	return cfg
}

func (c *Context) warn(text string) {
	c.sink.Emit(Msg{Severity: Warning, Text: text})
}
