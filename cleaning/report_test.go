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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aaronlmathis/raceclean/core"
)

func TestCheckMissingValues(t *testing.T) {
	e, _ := newEngine(t, raceTable(
		core.Record{ColumnGrandPrix: "Monaco", ColumnDate: "28-May-95", ColumnWinner: "Michael Schumacher", ColumnLaps: 78, ColumnTime: "1:53:11.258"},
		core.Record{ColumnGrandPrix: "Italy", ColumnDate: "10-Sep-95", ColumnWinner: nil, ColumnLaps: math.NaN(), ColumnTime: nil},
		core.Record{ColumnGrandPrix: "Spain", ColumnDate: "14-May-95", ColumnWinner: "Michael Schumacher", ColumnLaps: 65, ColumnTime: "N/A"},
		core.Record{ColumnGrandPrix: "Japan", ColumnDate: "29-Oct-95", ColumnWinner: "Michael Schumacher", ColumnLaps: 53},
	))

	report := e.CheckMissingValues()

	assert.Equal(t, 4, report.TotalRows)
	assert.Equal(t, raceColumns, report.Columns)
	assert.Equal(t, 1, report.NullValues[ColumnLaps], "NaN counts as missing")
	assert.Equal(t, report.NullValues, report.NAValues)
	assert.Equal(t, 2, report.NullValues[ColumnTime], "absent key counts as missing")
	assert.Equal(t, 0, report.NullValues[ColumnGrandPrix])
	assert.InDelta(t, 50.0, report.MissingPercentage[ColumnTime], 1e-9)
	assert.InDelta(t, 25.0, report.MissingPercentage[ColumnWinner], 1e-9)
	assert.Equal(t, 2, report.RowsWithMissing)
	assert.Equal(t, []int{1, 3}, report.MissingRows)
	assert.Equal(t, 4, report.TotalMissing())
}

func TestCheckMissingValues_EmptyTable(t *testing.T) {
	e, _ := newEngine(t, raceTable())
	report := e.CheckMissingValues()

	assert.Equal(t, 0, report.TotalRows)
	assert.Equal(t, 0, report.RowsWithMissing)
	for _, col := range raceColumns {
		assert.Equal(t, 0.0, report.MissingPercentage[col])
	}
}

func TestDisplayMissingDataReport(t *testing.T) {
	e, out := newEngine(t, scenarioTable())
	e.DisplayMissingDataReport()

	text := out.String()
	assert.Contains(t, text, "Total rows: 3")
	assert.Contains(t, text, "Rows with missing data: 1")
	assert.Contains(t, text, "GRAND PRIX: 0\n")
	assert.Contains(t, text, "Italy")
	assert.Contains(t, text, "<nil>")

	clean, cleanOut := newEngine(t, raceTable(core.Record{
		ColumnGrandPrix: "Monaco", ColumnDate: "28-May-95", ColumnWinner: "Michael Schumacher", ColumnLaps: 78, ColumnTime: "1:53:11.258",
	}))
	clean.DisplayMissingDataReport()
	assert.Contains(t, cleanOut.String(), "No rows with missing values")
}
