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
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/aaronlmathis/raceclean/core"
)

var raceTimePattern = regexp.MustCompile(`(\d+):(\d+):(\d+\.?\d*)`)

// AverageRaceTime averages the H:MM:SS[.fff] values found in values with the default policy.
// Entries that are missing, excluded tokens or without a time are skipped. When nothing parses the
// result is FallbackRaceTime.
func AverageRaceTime(values []interface{}) string {
	p := DefaultPolicy()
	return averageRaceTime(values, p.AverageTimeExcluded, p.FallbackRaceTime)
}

// AverageRaceTime recomputes the average over the current TIME column.
func (e *Engine) AverageRaceTime() string {
	return averageRaceTime(e.data.Values(ColumnTime), e.policy.AverageTimeExcluded, e.policy.FallbackRaceTime)
}

func averageRaceTime(values []interface{}, excluded map[string]struct{}, fallback string) string {
	var total float64
	parsed := 0
	for _, v := range values {
		if core.IsMissing(v) {
			continue
		}
		if s, ok := v.(string); ok {
			if _, skip := excluded[s]; skip {
				continue
			}
		}
		if secs, ok := parseRaceTime(core.FormatValue(v)); ok {
			total += secs
			parsed++
		}
	}
	if parsed == 0 {
		return fallback
	}
	return FormatRaceTime(total / float64(parsed))
}

// parseRaceTime finds the first H:MM:SS[.fff] in s and returns it in seconds.
func parseRaceTime(s string) (float64, bool) {
	m := raceTimePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, true
}

// FormatRaceTime formats seconds as H:MM:SS.mmm. The value is rounded to whole milliseconds first so
// rounding never yields a seconds field of 60.
func FormatRaceTime(seconds float64) string {
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3_600_000
	minutes := millis % 3_600_000 / 60_000
	secs := float64(millis%60_000) / 1000
	return fmt.Sprintf("%d:%02d:%06.3f", hours, minutes, secs)
}
