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

	"github.com/aaronlmathis/raceclean/core"
)

// Package filter provides composable record predicates.
//
// The cleaning engine uses them to find incomplete rows and rows holding null-like text tokens.

// NotNull creates a filter that excludes records where the specified field is absent or missing.
func NotNull(field string) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		value, exists := record[field]
		return exists && !core.IsMissing(value), nil
	})
}

// AnyMissing creates a filter that includes records where at least one of fields is absent or missing.
func AnyMissing(fields ...string) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		for _, field := range fields {
			if core.IsMissing(record[field]) {
				return true, nil
			}
		}
		return false, nil
	})
}

// StringIn creates a filter that includes records whose field is a string found in values.
func StringIn(field string, values map[string]struct{}) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		str, ok := record[field].(string)
		if !ok {
			return false, nil
		}
		_, found := values[str]
		return found, nil
	})
}

// And creates a filter that requires all provided filters to pass
func And(filters ...core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		for _, filter := range filters {
			include, err := filter.ShouldInclude(ctx, record)
			if err != nil {
				return false, err
			}
			if !include {
				return false, nil
			}
		}
		return true, nil
	})
}

// Not creates a filter that negates the provided filter
func Not(filter core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		return !include, nil
	})
}

// Indexes returns the positions of the rows that pass f, in order.
func Indexes(ctx context.Context, f core.Filter, rows []core.Record) ([]int, error) {
	var out []int
	for i, r := range rows {
		include, err := f.ShouldInclude(ctx, r)
		if err != nil {
			return nil, err
		}
		if include {
			out = append(out, i)
		}
	}
	return out, nil
}
