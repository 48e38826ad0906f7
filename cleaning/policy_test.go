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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, ColumnPolicy{Impute: ImputeMedian, StringNull: NullMedianText, Coerce: CoerceInteger}, p.Column(ColumnLaps))
	assert.Equal(t, ColumnPolicy{Impute: ImputeAverageTime, StringNull: NullAverageTime}, p.Column(ColumnTime))
	assert.Equal(t, CoerceTwoDigitYearDate, p.Column(ColumnDate).Coerce)
	assert.Equal(t, ColumnPolicy{}, p.Column(ColumnWinner), "unlisted columns fall back to the mode rule")
	assert.Len(t, p.RequiredColumns, 5)
}

func TestPolicy_IsNullToken(t *testing.T) {
	p := DefaultPolicy()

	for _, tok := range []string{"null", "NULL", "Null", "nan", "NaN", "NAN", "n/a", "N/A", ""} {
		assert.True(t, p.IsNullToken(tok), tok)
	}
	assert.False(t, p.IsNullToken("Unknown"))
	assert.False(t, p.IsNullToken("none"))
	assert.False(t, p.IsNullToken(nil))
	assert.False(t, p.IsNullToken(0))
}

func TestPolicy_AverageTimeExclusionsAreNarrower(t *testing.T) {
	p := DefaultPolicy()

	_, excluded := p.AverageTimeExcluded["NaN"]
	assert.False(t, excluded)
	_, excluded = p.AverageTimeExcluded["N/A"]
	assert.True(t, excluded)
}

func TestPolicy_WithDefaultsKeepsOverrides(t *testing.T) {
	p := Policy{CenturyCutoff: 2010, UnknownValue: "n.a."}.withDefaults()

	assert.Equal(t, 2010, p.CenturyCutoff)
	assert.Equal(t, "n.a.", p.UnknownValue)
	assert.Equal(t, DateLayout, p.DateLayout)
	assert.Equal(t, FallbackRaceTime, p.FallbackRaceTime)
	assert.NotEmpty(t, p.NullTokens)
	assert.Equal(t, DefaultPolicy().Columns, p.Columns)
}
