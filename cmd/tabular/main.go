// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command tabular exercises the data engine from the command line.
//
// Usage:
//
//	tabular gen --config schema.yaml
//	tabular inspect --config schema.yaml
//
// The config file describes a variable schema and generation settings;
// see Config for the fields.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/TabularFOSS/pkg/logging"
)

var (
	rootCmd = &cobra.Command{
		Use:   "tabular",
		Short: "A CLI for the Aleutian tabular data engine",
		Long: `Tabular generates, filters, and summarizes datasets through the
Aleutian tabular data engine: dictionaries, case streams, split groups,
and spillable datasheets.`,
		SilenceUsage: true,
	}

	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tabular.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(inspectCmd)
}

func newLogger() *logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{Level: level, Service: "tabular"})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
