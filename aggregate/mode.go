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

	"github.com/aaronlmathis/raceclean/core"
)

// ModeAggregator finds the most frequent value of Field.
// Values compare by their text form; missing values and anything in Exclude are ignored.
// Ties go to the smallest text form so the result is deterministic.
type ModeAggregator struct {
	Field   string
	Exclude map[string]struct{}

	counts map[string]int
}

func (m *ModeAggregator) Add(ctx context.Context, record core.Record) error {
	v := record[m.Field]
	if core.IsMissing(v) {
		return nil
	}
	key := core.FormatValue(v)
	if _, skip := m.Exclude[key]; skip {
		return nil
	}
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[key]++
	return nil
}

// Result returns {"mode": string, "count": int}, or ErrNoValues when nothing qualified.
func (m *ModeAggregator) Result() (core.Record, error) {
	best, bestCount := "", 0
	for k, n := range m.counts {
		if n > bestCount || (n == bestCount && k < best) {
			best, bestCount = k, n
		}
	}
	if bestCount == 0 {
		return core.Record{"mode": nil, "count": 0}, ErrNoValues
	}
	return core.Record{"mode": best, "count": bestCount}, nil
}

func (m *ModeAggregator) Reset() {
	m.counts = nil
}
