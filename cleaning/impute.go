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
	"strconv"

	"go.uber.org/zap"

	"github.com/aaronlmathis/raceclean/aggregate"
	"github.com/aaronlmathis/raceclean/core"
	"github.com/aaronlmathis/raceclean/filter"
)

// CleanMissingValues fills missing LAPS with the column median and missing TIME with the average
// race time, then runs CleanStringNulls. Rows are never removed.
func (e *Engine) CleanMissingValues() {
	e.printf("Starting data cleaning...\n")

	for _, col := range e.data.Columns {
		strategy := e.policy.Column(col).Impute
		if strategy == ImputeNone {
			continue
		}

		rows := e.missingRows(col)
		if len(rows) == 0 {
			continue
		}

		switch strategy {
		case ImputeMedian:
			median, err := aggregate.Median(e.data.Values(col))
			if err != nil {
				e.logger.Warn("no numeric values for median, filling with 0",
					zap.String("column", col), zap.Error(err))
				median = 0
			}
			e.printf("Replacing null values in %s with the median: %s\n", col, core.FormatValue(median))
			e.replace(col, rows, median, OpMedianFill, ReasonMissingValue)
			e.logFill(col, len(rows), median, OpMedianFill)
		case ImputeAverageTime:
			avg := e.AverageRaceTime()
			e.printf("Replacing null values in %s with the average time: '%s'\n", col, avg)
			e.replace(col, rows, avg, OpAverageTimeFill, ReasonMissingValue)
			e.logFill(col, len(rows), avg, OpAverageTimeFill)
		}
	}

	e.CleanStringNulls()

	e.printf("Cleaning completed!\n")
}

// CleanStringNulls replaces null-like text tokens in text columns. TIME takes the recomputed average
// race time, LAPS the truncated median of its numeric values as text, and any other column its mode
// or UnknownValue. A second call changes nothing.
func (e *Engine) CleanStringNulls() {
	for _, col := range e.data.Columns {
		if !e.isTextColumn(col) {
			continue
		}

		// StringIn never returns an error.
		rows, _ := filter.Indexes(context.Background(), filter.StringIn(col, e.policy.NullTokens), e.data.Rows)
		if len(rows) == 0 {
			continue
		}

		var (
			value string
			op    string
		)
		switch e.policy.Column(col).StringNull {
		case NullAverageTime:
			value, op = e.AverageRaceTime(), OpAverageTimeFill
		case NullMedianText:
			value, op = e.medianText(col), OpMedianFill
		default:
			value, op = e.mode(col)
		}

		e.replace(col, rows, value, op, ReasonNullToken)
		e.printf("Replaced %d null values in %s with '%s'\n", len(rows), col, value)
		e.logFill(col, len(rows), value, op)
	}
}

// medianText is the column median after numeric coercion, truncated and formatted. It is "0" when
// the column holds no numbers.
func (e *Engine) medianText(col string) string {
	median, err := aggregate.Median(e.data.Values(col))
	if err != nil {
		return "0"
	}
	return strconv.Itoa(int(median))
}

// mode returns the most frequent non-token value of col, or UnknownValue when there is none.
func (e *Engine) mode(col string) (string, string) {
	agg := &aggregate.ModeAggregator{Field: col, Exclude: e.policy.NullTokens}
	res, err := aggregate.Over(context.Background(), agg, e.data.Rows)
	if err != nil {
		return e.policy.UnknownValue, OpUnknownFill
	}
	return res["mode"].(string), OpModeFill
}

func (e *Engine) missingRows(col string) []int {
	var rows []int
	for i, r := range e.data.Rows {
		if core.IsMissing(r[col]) {
			rows = append(rows, i)
		}
	}
	return rows
}

// isTextColumn reports whether any present value of col is a string.
func (e *Engine) isTextColumn(col string) bool {
	for _, r := range e.data.Rows {
		if _, ok := r[col].(string); ok {
			return true
		}
	}
	return false
}

func (e *Engine) logFill(col string, n int, value interface{}, op string) {
	e.logger.Info("replaced values",
		zap.String("column", col),
		zap.Int("count", n),
		zap.String("value", core.FormatValue(value)),
		zap.String("operation", op),
	)
}
