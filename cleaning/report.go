//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of RaceClean.
//
// RaceClean is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RaceClean is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RaceClean. If not, see https://www.gnu.org/licenses/.

package cleaning

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aaronlmathis/raceclean/core"
	"github.com/aaronlmathis/raceclean/filter"
	"github.com/aaronlmathis/raceclean/render"
)

// MissingReport describes the missing values of a table. It is recomputed on demand.
type MissingReport struct {
	TotalRows int
	// Columns keeps the table's column order for printing.
	Columns []string
	// NullValues and NAValues hold the same counts: nil and NaN are both missing.
	NullValues        map[string]int
	NAValues          map[string]int
	MissingPercentage map[string]float64
	RowsWithMissing   int
	// MissingRows are the indexes of rows with at least one missing value.
	MissingRows []int
}

// TotalMissing sums the per-column null counts.
func (r MissingReport) TotalMissing() int {
	total := 0
	for _, n := range r.NullValues {
		total += n
	}
	return total
}

// BuildMissingReport computes the report for t. An empty table yields zero counts and percentages.
func BuildMissingReport(t *core.Table) MissingReport {
	report := MissingReport{
		TotalRows:         t.Len(),
		Columns:           append([]string(nil), t.Columns...),
		NullValues:        make(map[string]int, len(t.Columns)),
		NAValues:          make(map[string]int, len(t.Columns)),
		MissingPercentage: make(map[string]float64, len(t.Columns)),
	}

	for _, col := range t.Columns {
		count := 0
		for _, row := range t.Rows {
			if core.IsMissing(row[col]) {
				count++
			}
		}
		report.NullValues[col] = count
		report.NAValues[col] = count
		if report.TotalRows > 0 {
			report.MissingPercentage[col] = float64(count) / float64(report.TotalRows) * 100
		} else {
			report.MissingPercentage[col] = 0
		}
	}

	// AnyMissing never returns an error.
	rows, _ := filter.Indexes(context.Background(), filter.AnyMissing(t.Columns...), t.Rows)
	report.MissingRows = rows
	report.RowsWithMissing = len(rows)
	return report
}

// CheckMissingValues reports the missing values of the working table.
func (e *Engine) CheckMissingValues() MissingReport {
	return BuildMissingReport(e.data)
}

// DisplayMissingDataReport prints the missing-data report and the incomplete rows.
func (e *Engine) DisplayMissingDataReport() {
	report := e.CheckMissingValues()

	render.Banner(e.out, "MISSING DATA REPORT")
	e.printf("Total rows: %d\n", report.TotalRows)
	e.printf("Rows with missing data: %d\n\n", report.RowsWithMissing)

	e.printf("Null values per column:\n%s\n", strings.Repeat("-", 30))
	for _, col := range report.Columns {
		count := report.NullValues[col]
		if count > 0 {
			e.printf("%s: %d (%.2f%%)\n", col, count, report.MissingPercentage[col])
		} else {
			e.printf("%s: %d\n", col, count)
		}
	}

	e.printf("\nRows with missing values:\n%s\n", strings.Repeat("-", 30))
	if len(report.MissingRows) == 0 {
		e.printf("No rows with missing values\n")
	} else {
		rows := make([]core.Record, len(report.MissingRows))
		for i, idx := range report.MissingRows {
			rows[i] = e.data.Rows[idx]
		}
		if err := render.Records(e.out, e.policy.RequiredColumns, rows); err != nil {
			e.logger.Warn("failed to print incomplete rows", zap.Error(err))
		}
	}

	e.logger.Info("missing data report",
		zap.Int("rows", report.TotalRows),
		zap.Int("rows_with_missing", report.RowsWithMissing),
		zap.Int("missing_values", report.TotalMissing()),
	)
}
