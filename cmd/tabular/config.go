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
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// VariableSpec describes one variable of the generated dictionary.
type VariableSpec struct {
	// Name is the variable name, e.g. "income".
	Name string `yaml:"name" validate:"required"`

	// Width is 0 for numeric, or the string width in bytes.
	Width int `yaml:"width" validate:"gte=0,lte=32767"`

	// Format optionally overrides the default print format, in command
	// syntax, e.g. "F8.2" or "A10".
	Format string `yaml:"format,omitempty"`

	// Label is the optional variable label.
	Label string `yaml:"label,omitempty"`

	// Role marks the variable's job during gen: "", "weight", "filter",
	// or "split". Weight and filter variables must be numeric.
	Role string `yaml:"role,omitempty" validate:"omitempty,oneof=weight filter split"`
}

// Config is the tabular CLI's YAML config file.
type Config struct {
	// Dataset names the dataset within the session.
	Dataset string `yaml:"dataset" validate:"required"`

	// Cases is how many cases gen synthesizes.
	Cases int `yaml:"cases" validate:"gte=0"`

	// Seed makes generation reproducible.
	Seed int64 `yaml:"seed"`

	// SpillDir, when set, spills generated data to a BadgerDB under this
	// directory instead of holding it in memory.
	SpillDir string `yaml:"spill_dir,omitempty"`

	// MetricsAddr, when set, serves engine metrics in Prometheus format
	// at http://ADDR/metrics for the duration of the command.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`

	// Variables is the dictionary schema.
	Variables []VariableSpec `yaml:"variables" validate:"required,min=1,dive"`
}

// LoadConfig reads and validates the YAML config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}

	weights, filters := 0, 0
	for _, v := range cfg.Variables {
		switch v.Role {
		case "weight":
			weights++
			if v.Width != 0 {
				return nil, fmt.Errorf("validate config %s: weight variable %s must be numeric", path, v.Name)
			}
		case "filter":
			filters++
			if v.Width != 0 {
				return nil, fmt.Errorf("validate config %s: filter variable %s must be numeric", path, v.Name)
			}
		}
	}
	if weights > 1 || filters > 1 {
		return nil, fmt.Errorf("validate config %s: at most one weight and one filter variable", path)
	}
	return &cfg, nil
}
