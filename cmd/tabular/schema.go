// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/AleutianAI/TabularFOSS/services/engine/dictionary"
	"github.com/AleutianAI/TabularFOSS/services/engine/format"
)

// applySchema populates d from the config's variable specs and wires the
// weight, filter, and split roles.
func applySchema(d *dictionary.Dict, cfg *Config) error {
	var splits []*dictionary.Variable
	for _, spec := range cfg.Variables {
		v, err := d.TryCreateVar(spec.Name, spec.Width)
		if err != nil {
			return fmt.Errorf("variable %s: %w", spec.Name, err)
		}
		if spec.Format != "" {
			fs, err := format.Parse(spec.Format)
			if err != nil {
				return fmt.Errorf("variable %s: %w", spec.Name, err)
			}
			if err := fs.CheckWidthCompat(spec.Width); err != nil {
				return fmt.Errorf("variable %s: format %s: %w", spec.Name, spec.Format, err)
			}
			v.SetBothFormats(fs)
		}
		if spec.Label != "" {
			v.SetLabel(spec.Label)
		}
		switch spec.Role {
		case "weight":
			d.SetWeight(v)
		case "filter":
			d.SetFilter(v)
		case "split":
			splits = append(splits, v)
		}
	}
	if len(splits) > 0 {
		d.SetSplitVars(splits, dictionary.SplitSeparate)
	}
	return nil
}
