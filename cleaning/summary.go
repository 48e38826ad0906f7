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
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/aaronlmathis/raceclean/core"
	"github.com/aaronlmathis/raceclean/render"
)

// Summary compares the working table with the original.
type Summary struct {
	OriginalMissing int
	CurrentMissing  int
	ValuesCleaned   int
	OriginalRows    int
	OriginalColumns int
	CurrentRows     int
	CurrentColumns  int
	RowsPreserved   bool
	// NullTokens counts null-like text tokens still present.
	NullTokens int
}

// CleaningSummary compares missing totals and shapes before and after cleaning.
func (e *Engine) CleaningSummary() Summary {
	s := Summary{
		OriginalMissing: e.original.CountMissing(),
		CurrentMissing:  e.data.CountMissing(),
	}
	s.ValuesCleaned = s.OriginalMissing - s.CurrentMissing
	s.OriginalRows, s.OriginalColumns = e.original.Shape()
	s.CurrentRows, s.CurrentColumns = e.data.Shape()
	s.RowsPreserved = s.OriginalRows == s.CurrentRows

	for _, r := range e.data.Rows {
		for _, c := range e.data.Columns {
			if e.policy.IsNullToken(r[c]) {
				s.NullTokens++
			}
		}
	}
	return s
}

// Print writes the summary lines to w.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Original missing values: %d\n", s.OriginalMissing)
	fmt.Fprintf(w, "Current missing values: %d\n", s.CurrentMissing)
	fmt.Fprintf(w, "Values cleaned: %d\n", s.ValuesCleaned)
	fmt.Fprintf(w, "Rows preserved: %t\n", s.RowsPreserved)
	fmt.Fprintf(w, "Original shape: (%d, %d)\n", s.OriginalRows, s.OriginalColumns)
	fmt.Fprintf(w, "Current shape: (%d, %d)\n", s.CurrentRows, s.CurrentColumns)
}

// FullCleaningProcess runs the report, the imputer, the type coercer and the summary in that order
// and returns the working table. It never stops early.
func (e *Engine) FullCleaningProcess() *core.Table {
	render.Banner(e.out, "STARTING FULL CLEANING PROCESS")

	e.DisplayMissingDataReport()

	e.printf("\n")
	render.Rule(e.out)
	e.CleanMissingValues()

	e.printf("\n")
	render.Rule(e.out)
	e.printf("Converting data types...\n")
	e.ConvertDataTypes()

	e.printf("\n")
	render.Banner(e.out, "FINAL CLEANING SUMMARY")
	summary := e.CleaningSummary()
	summary.Print(e.out)

	final := e.CheckMissingValues()
	e.printf("\nFinal check - total null values: %d\n", final.TotalMissing())

	e.logger.Info("cleaning finished",
		zap.Int("original_missing", summary.OriginalMissing),
		zap.Int("current_missing", summary.CurrentMissing),
		zap.Int("substitutions", len(e.substitutions)),
		zap.Bool("rows_preserved", summary.RowsPreserved),
	)
	return e.data
}
