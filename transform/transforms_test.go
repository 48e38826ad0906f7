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

package transform

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/raceclean/core"
)

func apply(t *testing.T, tr core.Transformer, rec core.Record) core.Record {
	t.Helper()
	out, err := tr.Transform(context.Background(), rec)
	require.NoError(t, err)
	return out
}

func TestSelectAndRename(t *testing.T) {
	rec := core.Record{"GRAND PRIX": "Monaco", "LAPS": 78, "extra": true}

	selected := apply(t, Select("GRAND PRIX", "LAPS", "absent"), rec)
	assert.Equal(t, core.Record{"GRAND PRIX": "Monaco", "LAPS": 78}, selected)

	renamed := apply(t, Rename(map[string]string{"GRAND PRIX": "grand_prix"}), selected)
	assert.Equal(t, core.Record{"grand_prix": "Monaco", "LAPS": 78}, renamed)
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int
	}{
		{in: "44", want: 44},
		{in: "abc", want: 0},
		{in: nil, want: 0},
		{in: math.NaN(), want: 0},
		{in: 61.9, want: 61},
		{in: " 70 ", want: 70},
		{in: 78, want: 78},
		{in: math.Pow(2, 63), want: 0},
		{in: "9223372036854775808", want: 0},
		{in: 1e300, want: 0},
		{in: -math.Pow(2, 63), want: math.MinInt64},
	}
	tr := CoerceInt("LAPS", 0)
	for _, tt := range tests {
		rec := core.Record{"LAPS": tt.in}
		out := apply(t, tr, rec)
		assert.Equal(t, tt.want, out["LAPS"], "input %v", tt.in)
		assert.Equal(t, tt.in == nil, rec["LAPS"] == nil, "input record must not change")
	}
}

func TestToNumeric(t *testing.T) {
	out := apply(t, ToNumeric("LAPS"), core.Record{"LAPS": "52"})
	assert.Equal(t, 52.0, out["LAPS"])

	out = apply(t, ToNumeric("LAPS"), core.Record{"LAPS": "N/A"})
	assert.True(t, core.IsMissing(out["LAPS"]))
}

func TestParseTwoDigitYearDate(t *testing.T) {
	tr := ParseTwoDigitYearDate("DATE", "2-Jan-06", 2030)

	tests := []struct {
		in   interface{}
		want interface{}
	}{
		{in: "01-Jan-95", want: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)},
		{in: "14-may-12", want: time.Date(2012, 5, 14, 0, 0, 0, 0, time.UTC)},
		{in: " 7-Sep-30 ", want: time.Date(2030, 9, 7, 0, 0, 0, 0, time.UTC)},
		{in: "07-Sep-31", want: time.Date(1931, 9, 7, 0, 0, 0, 0, time.UTC)},
		{in: "21-Jun-50", want: time.Date(1950, 6, 21, 0, 0, 0, 0, time.UTC)},
		{in: "not a date", want: nil},
		{in: nil, want: nil},
		{in: 12, want: nil},
	}
	for _, tt := range tests {
		out := apply(t, tr, core.Record{"DATE": tt.in})
		assert.Equal(t, tt.want, out["DATE"], "input %v", tt.in)
	}

	existing := time.Date(1988, 4, 3, 0, 0, 0, 0, time.UTC)
	out := apply(t, tr, core.Record{"DATE": existing})
	assert.Equal(t, existing, out["DATE"])
}

func TestChainAndTrimSpace(t *testing.T) {
	tr := Chain(TrimSpace("WINNER"), Select("WINNER"))
	out := apply(t, tr, core.Record{"WINNER": "  Alain Prost ", "LAPS": 1})
	assert.Equal(t, core.Record{"WINNER": "Alain Prost"}, out)
}
