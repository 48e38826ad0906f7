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
	"strings"
	"time"

	"github.com/aaronlmathis/raceclean/core"
)

// Package transform provides the per-record transformers used by the cleaning engine and the load step.
//
// Every transformer returns a new record; the input record is never modified.

// Select creates a transformer that selects only the specified fields from each record.
// Fields not listed are omitted from the output record.
func Select(fields ...string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := make(core.Record, len(fields))
		for _, field := range fields {
			if value, exists := record[field]; exists {
				result[field] = value
			}
		}
		return result, nil
	})
}

// Rename creates a transformer that renames fields according to the provided mapping.
// Keys are original field names, values are new field names.
func Rename(mapping map[string]string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := make(core.Record, len(record))
		for key, value := range record {
			if newKey, exists := mapping[key]; exists {
				result[newKey] = value
			} else {
				result[key] = value
			}
		}
		return result, nil
	})
}

// TrimSpace creates a transformer that trims whitespace from the specified string fields.
func TrimSpace(fields ...string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := record.Clone()
		for _, field := range fields {
			if str, ok := record[field].(string); ok {
				result[field] = strings.TrimSpace(str)
			}
		}
		return result, nil
	})
}

// ToNumeric coerces a field to float64. Values that are not numbers or numeric strings become NaN,
// the missing marker.
func ToNumeric(field string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := record.Clone()
		if f, ok := core.ToFloat(record[field]); ok {
			result[field] = f
		} else {
			result[field] = math.NaN()
		}
		return result, nil
	})
}

// CoerceInt converts a field to int. Numbers are truncated toward zero, numeric strings are parsed,
// and missing, unparsable or out-of-range values become fallback.
func CoerceInt(field string, fallback int) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := record.Clone()
		if f, ok := core.ToFloat(record[field]); ok && f >= math.MinInt64 && f < math.MaxInt64 {
			result[field] = int(f)
		} else {
			result[field] = fallback
		}
		return result, nil
	})
}

// ParseTwoDigitYearDate parses a string field holding a date with a two-digit year, such as
// "14-May-95" with layout "2-Jan-06". The century is resolved as 2000+yy, moved back 100 years when
// that lands after cutoff. Unparsable values become nil; time.Time values are kept.
func ParseTwoDigitYearDate(field, layout string, cutoff int) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := record.Clone()
		switch v := record[field].(type) {
		case time.Time:
		case string:
			if d, ok := parseTwoDigitYear(v, layout, cutoff); ok {
				result[field] = d
			} else {
				result[field] = nil
			}
		default:
			result[field] = nil
		}
		return result, nil
	})
}

func parseTwoDigitYear(s, layout string, cutoff int) (time.Time, bool) {
	parsed, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	year := 2000 + parsed.Year()%100
	if year > cutoff {
		year -= 100
	}
	return time.Date(year, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
}

// Chain composes transformers left to right into one.
func Chain(transformers ...core.Transformer) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		var err error
		for _, t := range transformers {
			if record, err = t.Transform(ctx, record); err != nil {
				return nil, err
			}
		}
		return record, nil
	})
}
