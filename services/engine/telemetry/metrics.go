// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry exposes OpenTelemetry counters for the data engine.
//
// Counters are created lazily against the global meter provider, so a
// process that never installs a provider pays only for no-op instruments.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	initOnce sync.Once

	casesRead     metric.Int64Counter
	casesWritten  metric.Int64Counter
	readerTaints  metric.Int64Counter
	sheetSpills   metric.Int64Counter
	sheetResizes  metric.Int64Counter
	procsOpened   metric.Int64Counter
	procsDiscards metric.Int64Counter
)

func initMetrics() {
	initOnce.Do(func() {
		meter := otel.Meter("tabular/engine")

		var err error
		casesRead, err = meter.Int64Counter("tabular.cases.read",
			metric.WithDescription("Cases read from case streams"))
		if err != nil {
			casesRead = nil
		}
		casesWritten, err = meter.Int64Counter("tabular.cases.written",
			metric.WithDescription("Cases appended to case writers"))
		if err != nil {
			casesWritten = nil
		}
		readerTaints, err = meter.Int64Counter("tabular.stream.taints",
			metric.WithDescription("I/O failures observed by case streams"))
		if err != nil {
			readerTaints = nil
		}
		sheetSpills, err = meter.Int64Counter("tabular.sheet.spills",
			metric.WithDescription("Column writes spilled to disk storage"))
		if err != nil {
			sheetSpills = nil
		}
		sheetResizes, err = meter.Int64Counter("tabular.sheet.resizes",
			metric.WithDescription("In-place column width conversions"))
		if err != nil {
			sheetResizes = nil
		}
		procsOpened, err = meter.Int64Counter("tabular.procedures.opened",
			metric.WithDescription("Procedures opened on datasets"))
		if err != nil {
			procsOpened = nil
		}
		procsDiscards, err = meter.Int64Counter("tabular.procedures.discarded",
			metric.WithDescription("Procedures discarded without commit"))
		if err != nil {
			procsDiscards = nil
		}
	})
}

// AddCasesRead counts n cases delivered by a reader.
func AddCasesRead(n int64) {
	initMetrics()
	if casesRead != nil {
		casesRead.Add(context.Background(), n)
	}
}

// AddCasesWritten counts n cases accepted by a writer.
func AddCasesWritten(n int64) {
	initMetrics()
	if casesWritten != nil {
		casesWritten.Add(context.Background(), n)
	}
}

// AddReaderTaint counts one stream I/O failure.
func AddReaderTaint() {
	initMetrics()
	if readerTaints != nil {
		readerTaints.Add(context.Background(), 1)
	}
}

// AddSheetSpill counts one column write that went to disk storage.
func AddSheetSpill() {
	initMetrics()
	if sheetSpills != nil {
		sheetSpills.Add(context.Background(), 1)
	}
}

// AddSheetResize counts one column width conversion.
func AddSheetResize() {
	initMetrics()
	if sheetResizes != nil {
		sheetResizes.Add(context.Background(), 1)
	}
}

// AddProcOpened counts one procedure opened on a dataset.
func AddProcOpened() {
	initMetrics()
	if procsOpened != nil {
		procsOpened.Add(context.Background(), 1)
	}
}

// AddProcDiscarded counts one procedure discarded without commit.
func AddProcDiscarded() {
	initMetrics()
	if procsDiscards != nil {
		procsDiscards.Add(context.Background(), 1)
	}
}
