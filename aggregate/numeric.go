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

package aggregate

import (
	"context"

	"github.com/montanaflynn/stats"

	"github.com/aaronlmathis/raceclean/core"
)

// CountAggregator counts the records whose Field holds a present value.
// An empty Field counts every record.
type CountAggregator struct {
	Field string
	count int
}

func (c *CountAggregator) Add(ctx context.Context, record core.Record) error {
	if c.Field == "" || !core.IsMissing(record[c.Field]) {
		c.count++
	}
	return nil
}

func (c *CountAggregator) Result() (core.Record, error) {
	return core.Record{"count": c.count}, nil
}

func (c *CountAggregator) Reset() {
	c.count = 0
}

// AvgAggregator calculates the mean of the numeric values of Field.
// Numeric strings count; anything else is skipped.
type AvgAggregator struct {
	Field string
	sum   float64
	count int
}

func (a *AvgAggregator) Add(ctx context.Context, record core.Record) error {
	if num, ok := core.ToFloat(record[a.Field]); ok {
		a.sum += num
		a.count++
	}
	return nil
}

func (a *AvgAggregator) Result() (core.Record, error) {
	if a.count == 0 {
		return core.Record{"avg": nil}, ErrNoValues
	}
	return core.Record{"avg": a.sum / float64(a.count)}, nil
}

func (a *AvgAggregator) Reset() {
	a.sum = 0
	a.count = 0
}

// MedianAggregator computes the median of the numeric values of Field.
type MedianAggregator struct {
	Field  string
	values stats.Float64Data
}

func (m *MedianAggregator) Add(ctx context.Context, record core.Record) error {
	if num, ok := core.ToFloat(record[m.Field]); ok {
		m.values = append(m.values, num)
	}
	return nil
}

// Result returns {"median": float64}. With no numeric input it returns ErrNoValues.
func (m *MedianAggregator) Result() (core.Record, error) {
	if len(m.values) == 0 {
		return core.Record{"median": nil}, ErrNoValues
	}
	median, err := stats.Median(m.values)
	if err != nil {
		return core.Record{"median": nil}, err
	}
	return core.Record{"median": median}, nil
}

func (m *MedianAggregator) Reset() {
	m.values = m.values[:0]
}

// Median is a convenience wrapper returning the median of the numeric values in values.
func Median(values []interface{}) (float64, error) {
	agg := &MedianAggregator{Field: "v"}
	for _, v := range values {
		_ = agg.Add(context.Background(), core.Record{"v": v})
	}
	res, err := agg.Result()
	if err != nil {
		return 0, err
	}
	return res["median"].(float64), nil
}
