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

package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return NewTable([]string{"GRAND PRIX", "LAPS"},
		Record{"GRAND PRIX": "Monaco", "LAPS": 78},
		Record{"GRAND PRIX": "Monza", "LAPS": nil},
		Record{"GRAND PRIX": "Spa", "LAPS": math.NaN()},
	)
}

func TestTable_CloneIsIndependent(t *testing.T) {
	original := sampleTable()
	clone := original.Clone()

	clone.Set(0, "GRAND PRIX", "Silverstone")
	clone.Columns[1] = "VUELTAS"

	assert.Equal(t, "Monaco", original.Get(0, "GRAND PRIX"))
	assert.Equal(t, "LAPS", original.Columns[1])
	assert.Equal(t, "Silverstone", clone.Get(0, "GRAND PRIX"))
}

func TestTable_ShapeAndValues(t *testing.T) {
	tbl := sampleTable()

	rows, cols := tbl.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.True(t, tbl.HasColumn("LAPS"))
	assert.False(t, tbl.HasColumn("TIME"))

	values := tbl.Values("GRAND PRIX")
	assert.Equal(t, []interface{}{"Monaco", "Monza", "Spa"}, values)
}

func TestTable_Head(t *testing.T) {
	tbl := sampleTable()

	assert.Equal(t, 2, tbl.Head(2).Len())
	assert.Equal(t, 3, tbl.Head(15).Len())
	assert.Equal(t, 3, tbl.Head(-1).Len())

	head := tbl.Head(1)
	head.Set(0, "GRAND PRIX", "changed")
	assert.Equal(t, "Monaco", tbl.Get(0, "GRAND PRIX"))
}

func TestTable_CountMissing(t *testing.T) {
	assert.Equal(t, 2, sampleTable().CountMissing())

	var empty *Table
	assert.Equal(t, 0, empty.Len())
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(math.NaN()))
	assert.True(t, IsMissing(float32(math.NaN())))
	assert.False(t, IsMissing(""))
	assert.False(t, IsMissing("N/A"))
	assert.False(t, IsMissing(0))
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{in: 44, want: 44, ok: true},
		{in: int64(7), want: 7, ok: true},
		{in: 61.5, want: 61.5, ok: true},
		{in: " 52 ", want: 52, ok: true},
		{in: "abc", ok: false},
		{in: "NaN", ok: false},
		{in: math.NaN(), ok: false},
		{in: nil, ok: false},
		{in: true, ok: false},
	}
	for _, tt := range tests {
		got, ok := ToFloat(tt.in)
		require.Equal(t, tt.ok, ok, "input %v", tt.in)
		if ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "", FormatValue(math.NaN()))
	assert.Equal(t, "1995-01-01", FormatValue(time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "57.5", FormatValue(57.5))
	assert.Equal(t, "44", FormatValue(44))
	assert.Equal(t, "Ayrton Senna", FormatValue("Ayrton Senna"))
}

func TestParseErrorStrategy(t *testing.T) {
	assert.Equal(t, SkipErrors, ParseErrorStrategy("skip"))
	assert.Equal(t, CollectErrors, ParseErrorStrategy("collect"))
	assert.Equal(t, FailFast, ParseErrorStrategy("anything"))
	assert.Equal(t, "collect", CollectErrors.String())
}
