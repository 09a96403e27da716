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
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/TabularFOSS/services/engine/casedata"
	"github.com/AleutianAI/TabularFOSS/services/engine/session"
	"github.com/AleutianAI/TabularFOSS/services/engine/sheet"
	"github.com/AleutianAI/TabularFOSS/services/engine/stream"
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Synthesize a dataset and summarize it by split group",
	Long: `Gen builds a dictionary from the config's variable schema, synthesizes
the configured number of cases, attaches them as a dataset's active data,
and reads them back through weight filtering and split grouping, printing
per-group case counts and weight totals.`,
	RunE: runGen,
}

func runGen(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger()
	defer logger.Close()
	if cfg.MetricsAddr != "" {
		if err := serveMetrics(cfg.MetricsAddr, logger); err != nil {
			return err
		}
	}

	sheetCfg := sheet.Config{SpillDir: cfg.SpillDir, Logger: logger.Slog()}
	ctx := session.NewContext(logger, nil, session.Settings{Sheet: sheetCfg})
	sess := session.NewSession(ctx)
	defer sess.Close()

	ds, err := sess.CreateDataset(cfg.Dataset)
	if err != nil {
		return err
	}
	if err := applySchema(ds.Dict(), cfg); err != nil {
		return err
	}
	if err := generateData(ds, cfg, sheetCfg); err != nil {
		return err
	}
	logger.Info("generated dataset",
		"dataset", cfg.Dataset, "cases", cfg.Cases, "variables", ds.Dict().N())

	return summarize(cmd, ds)
}

// generateData synthesizes cfg.Cases cases and attaches them to ds. With a
// spill directory configured the cases accumulate in a spilled sheet
// rather than memory.
func generateData(ds *session.Dataset, cfg *Config, sheetCfg sheet.Config) error {
	dict := ds.Dict()
	proto := dict.Proto()
	rng := rand.New(rand.NewSource(cfg.Seed))

	w, err := sheet.NewWriter(sheetCfg, proto)
	if err != nil {
		return fmt.Errorf("create data writer: %w", err)
	}

	nGroups := cfg.Cases/10 + 1
	for i := 0; i < cfg.Cases; i++ {
		c := casedata.NewCase(proto)
		for j, spec := range cfg.Variables {
			v := dict.Var(j)
			switch {
			case spec.Role == "split":
				// Split groups must arrive contiguously.
				c.SetNum(j, float64(i*nGroups/max(cfg.Cases, 1)))
			case spec.Role == "filter":
				c.SetNum(j, float64(rng.Intn(2)))
			case spec.Role == "weight":
				// Mostly valid weights, occasionally not, to exercise
				// the one-shot warning.
				c.SetNum(j, float64(rng.Intn(5)-1))
			case v.IsString():
				s := make([]byte, v.Width())
				for k := range s {
					s[k] = byte('a' + rng.Intn(26))
				}
				c.SetStr(j, s)
			default:
				c.SetNum(j, rng.NormFloat64()*10)
			}
		}
		w.Write(c)
	}

	r, err := w.MakeReader()
	if err != nil {
		return fmt.Errorf("finish generated data: %w", err)
	}
	ds.SetSource(r)
	return nil
}

// summarize reads the dataset back through filtering and split grouping.
func summarize(cmd *cobra.Command, ds *session.Dataset) error {
	dict := ds.Dict()
	r, err := ds.ProcOpenFiltering()
	if err != nil {
		return err
	}

	grouper := stream.NewSplitGrouper(r, dict)
	var totalCases, totalGroups int64
	var totalWeight float64
	warn := true
	for {
		group, exemplar, ok := grouper.Next()
		if !ok {
			break
		}
		totalGroups++

		var nCases int64
		var weight float64
		for {
			c := group.Read()
			if c == nil {
				break
			}
			nCases++
			weight += dict.CaseWeight(c, &warn)
			c.Unref()
		}
		if err := group.Close(); err != nil {
			exemplar.Unref()
			return err
		}

		label := "all cases"
		if splits := dict.SplitVars(); len(splits) > 0 {
			label = ""
			for i, sv := range splits {
				if i > 0 {
					label += ", "
				}
				label += fmt.Sprintf("%s=%g", sv.Name(), exemplar.Num(sv.CaseIndex()))
			}
		}
		exemplar.Unref()
		cmd.Printf("group %-24s cases %8d  weight %12.2f\n", label, nCases, weight)

		totalCases += nCases
		totalWeight += weight
	}
	if err := grouper.Close(); err != nil {
		return err
	}
	if err := ds.ProcCommit(); err != nil {
		return err
	}

	cmd.Printf("total: %d group(s), %d case(s), weight %.2f\n",
		totalGroups, totalCases, totalWeight)
	return nil
}
