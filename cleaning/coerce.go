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
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/aaronlmathis/raceclean/core"
	"github.com/aaronlmathis/raceclean/transform"
)

// ConvertDataTypes coerces LAPS to int (unparsable and missing become 0) and parses DATE as DD-Mon-YY
// with the century cutoff (unparsable becomes nil). A column that fails to convert is logged and
// keeps its previous values.
func (e *Engine) ConvertDataTypes() {
	for _, col := range e.coercedColumns() {
		var (
			t       core.Transformer
			changed func(before, after interface{}) (string, string, bool)
			done    string
		)
		switch e.policy.Column(col).Coerce {
		case CoerceInteger:
			t = transform.CoerceInt(col, 0)
			changed = lostNumber
			done = fmt.Sprintf("Column %s converted to integer", col)
		case CoerceTwoDigitYearDate:
			t = transform.ParseTwoDigitYearDate(col, e.policy.DateLayout, e.policy.CenturyCutoff)
			changed = lostDate
			done = fmt.Sprintf("Column %s converted to date with century correction", col)
		default:
			continue
		}

		if err := e.coerceColumn(col, t, changed); err != nil {
			e.printf("Could not convert %s: %v\n", col, err)
			e.logger.Error("column conversion failed, column left unchanged",
				zap.String("column", col), zap.Error(err))
			continue
		}
		e.printf("%s\n", done)
	}
}

// coercedColumns lists the policy columns with a coercion, sorted. A column the table lacks is
// still listed so its failure is reported.
func (e *Engine) coercedColumns() []string {
	var cols []string
	for name, p := range e.policy.Columns {
		if p.Coerce != CoerceNone {
			cols = append(cols, name)
		}
	}
	sort.Strings(cols)
	return cols
}

// coerceColumn runs t over every row into a scratch buffer and only then writes the column back.
// Values that lost information are recorded as substitutions.
func (e *Engine) coerceColumn(col string, t core.Transformer, changed func(before, after interface{}) (string, string, bool)) error {
	if !e.data.HasColumn(col) {
		return fmt.Errorf("column %q not found", col)
	}

	ctx := context.Background()
	scratch := make([]interface{}, e.data.Len())
	for i, row := range e.data.Rows {
		out, err := t.Transform(ctx, row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		scratch[i] = out[col]
	}

	for i, v := range scratch {
		if op, reason, lost := changed(e.data.Get(i, col), v); lost {
			e.replace(col, []int{i}, v, op, reason)
			continue
		}
		e.data.Set(i, col, v)
	}
	return nil
}

// lostNumber reports a present value that did not coerce to a number.
func lostNumber(before, after interface{}) (string, string, bool) {
	if core.IsMissing(before) {
		return OpNumericCoercion, ReasonMissingValue, true
	}
	if _, ok := core.ToFloat(before); !ok {
		return OpNumericCoercion, ReasonUnparsableNumber, true
	}
	return "", "", false
}

// lostDate reports a present value that did not parse as a date.
func lostDate(before, after interface{}) (string, string, bool) {
	if !core.IsMissing(before) && after == nil {
		return OpDateParse, ReasonUnparsableDate, true
	}
	return "", "", false
}
