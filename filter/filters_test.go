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

package filter

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/raceclean/core"
)

func TestAnyMissingIndexes(t *testing.T) {
	rows := []core.Record{
		{"LAPS": 78, "TIME": "1:53:11.258"},
		{"LAPS": nil, "TIME": "1:30:00.000"},
		{"LAPS": 44, "TIME": math.NaN()},
		{"LAPS": 44},
	}

	idx, err := Indexes(context.Background(), AnyMissing("LAPS", "TIME"), rows)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, idx)

	idx, err = Indexes(context.Background(), NotNull("TIME"), rows)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, idx)
}

func TestStringInAndComposition(t *testing.T) {
	tokens := map[string]struct{}{"N/A": {}, "null": {}}
	rows := []core.Record{
		{"WINNER": "N/A"},
		{"WINNER": "Senna"},
		{"WINNER": nil},
		{"WINNER": "null"},
	}
	ctx := context.Background()

	idx, err := Indexes(ctx, StringIn("WINNER", tokens), rows)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, idx)

	idx, err = Indexes(ctx, And(NotNull("WINNER"), Not(StringIn("WINNER", tokens))), rows)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, idx)
}
