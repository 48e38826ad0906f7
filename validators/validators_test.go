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

package validators

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/raceclean/core"
)

func cleanedTable() *core.Table {
	return core.NewTable([]string{"GRAND PRIX", "DATE", "LAPS"},
		core.Record{"GRAND PRIX": "Monaco", "DATE": time.Date(1995, 5, 14, 0, 0, 0, 0, time.UTC), "LAPS": 78},
		core.Record{"GRAND PRIX": "Monza", "DATE": nil, "LAPS": 53},
	)
}

func TestValidate_MissingFields(t *testing.T) {
	v := NewDataQualityValidator(0, []string{"GRAND PRIX", "WINNER", "TIME"})

	err := v.Validate(cleanedTable())
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "WINNER")
	assert.Equal(t, []string{"WINNER", "TIME"}, v.MissingFields(cleanedTable()))
}

func TestValidate_MinRecords(t *testing.T) {
	v := NewDataQualityValidator(3, nil)
	assert.ErrorIs(t, v.Validate(cleanedTable()), ErrTooFewRecords)
	assert.ErrorIs(t, v.Validate(nil), ErrTooFewRecords)
}

func TestValidate_FieldTypes(t *testing.T) {
	v := NewDataQualityValidator(1, []string{"LAPS", "DATE"},
		WithFieldValidator("LAPS", FieldValidator{DataType: FieldTypeInt}),
		WithFieldValidator("DATE", FieldValidator{DataType: FieldTypeDate, AllowNulls: true}),
	)
	require.NoError(t, v.Validate(cleanedTable()))

	bad := cleanedTable()
	bad.Set(1, "LAPS", "53")
	assert.ErrorIs(t, v.Validate(bad), ErrFieldType)

	strict := NewDataQualityValidator(1, nil,
		WithFieldValidator("DATE", FieldValidator{DataType: FieldTypeDate}))
	assert.ErrorIs(t, strict.Validate(cleanedTable()), ErrFieldType)
}

func TestValidate_NullRateAndCustom(t *testing.T) {
	v := NewDataQualityValidator(0, nil, WithMaxNullRate(0.25))
	assert.ErrorIs(t, v.Validate(cleanedTable()), ErrNullRate)

	v = NewDataQualityValidator(0, nil, WithMaxNullRate(0.5))
	assert.NoError(t, v.Validate(cleanedTable()))

	sentinel := errors.New("boom")
	v = NewDataQualityValidator(0, nil, WithCustomValidator(func(*core.Table) error { return sentinel }))
	assert.ErrorIs(t, v.Validate(cleanedTable()), sentinel)
}
