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
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/TabularFOSS/services/engine/dictionary"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the dictionary described by the config",
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	d := dictionary.New("UTF-8")
	if err := applySchema(d, cfg); err != nil {
		return err
	}

	cmd.Printf("dataset %s: %d variable(s), encoding %s\n", cfg.Dataset, d.N(), d.Encoding())
	for _, v := range d.Vars() {
		kind := "numeric"
		if v.IsString() {
			kind = "string"
		}
		line := []string{v.Name(), kind, v.PrintFormat().String()}
		if v.Label() != "" {
			line = append(line, "\""+v.Label()+"\"")
		}
		var marks []string
		if d.Weight() == v {
			marks = append(marks, "weight")
		}
		if d.Filter() == v {
			marks = append(marks, "filter")
		}
		for _, sv := range d.SplitVars() {
			if sv == v {
				marks = append(marks, "split")
			}
		}
		if len(marks) > 0 {
			line = append(line, "["+strings.Join(marks, ",")+"]")
		}
		cmd.Printf("  %s\n", strings.Join(line, "  "))
	}
	return nil
}
