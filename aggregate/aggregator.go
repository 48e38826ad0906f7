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
	"errors"

	"github.com/aaronlmathis/raceclean/core"
)

// ErrNoValues is returned by Result when an aggregator saw no usable values.
var ErrNoValues = errors.New("aggregate: no values")

// Aggregator defines the interface for data aggregation operations.
// Aggregators process multiple records and produce a summary result.
type Aggregator interface {
	// Add processes a record for aggregation.
	Add(ctx context.Context, record core.Record) error
	// Result returns the aggregated result as a Record.
	Result() (core.Record, error)
	// Reset clears the aggregator state for reuse.
	Reset()
}

// Over feeds every row of rows to agg and returns its result. The aggregator is reset first.
func Over(ctx context.Context, agg Aggregator, rows []core.Record) (core.Record, error) {
	agg.Reset()
	for _, r := range rows {
		if err := agg.Add(ctx, r); err != nil {
			return nil, err
		}
	}
	return agg.Result()
}
