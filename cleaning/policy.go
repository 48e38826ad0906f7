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

// Column names of the race results file.
const (
	ColumnGrandPrix = "GRAND PRIX"
	ColumnDate      = "DATE"
	ColumnWinner    = "WINNER"
	ColumnLaps      = "LAPS"
	ColumnTime      = "TIME"
)

const (
	// FallbackRaceTime is used when no TIME value can be parsed.
	FallbackRaceTime = "1:32:15.000"
	// UnknownValue fills text columns that have no mode.
	UnknownValue = "Unknown"
	// DateLayout is the DD-Mon-YY layout of the DATE column. A one-digit day is accepted.
	DateLayout = "2-Jan-06"
	// CenturyCutoff is the last year a two-digit year may resolve to.
	CenturyCutoff = 2030
)

// ImputeStrategy selects how true missing values of a column are filled.
type ImputeStrategy int

const (
	ImputeNone ImputeStrategy = iota
	ImputeMedian
	ImputeAverageTime
)

// StringNullStrategy selects how null-like text tokens of a column are replaced.
type StringNullStrategy int

const (
	NullMode StringNullStrategy = iota
	NullMedianText
	NullAverageTime
)

// CoerceStrategy selects the final type of a column.
type CoerceStrategy int

const (
	CoerceNone CoerceStrategy = iota
	CoerceInteger
	CoerceTwoDigitYearDate
)

// ColumnPolicy is the set of rules applied to one column. The zero value imputes nothing, replaces
// null tokens with the column mode and keeps the column type.
type ColumnPolicy struct {
	Impute     ImputeStrategy
	StringNull StringNullStrategy
	Coerce     CoerceStrategy
}

// Policy holds every rule of the cleaning engine as data.
type Policy struct {
	// NullTokens are text values treated as "no value" by the string-null pass.
	NullTokens map[string]struct{}
	// AverageTimeExcluded are TIME values skipped before averaging.
	AverageTimeExcluded map[string]struct{}
	FallbackRaceTime    string
	UnknownValue        string
	DateLayout          string
	CenturyCutoff       int
	// RequiredColumns must be present in the input; they are also the columns shown for incomplete rows.
	RequiredColumns []string
	Columns         map[string]ColumnPolicy
}

// DefaultPolicy returns the rules for the race results dataset.
func DefaultPolicy() Policy {
	return Policy{
		NullTokens:          tokenSet("null", "NULL", "Null", "nan", "NaN", "NAN", "n/a", "N/A", ""),
		AverageTimeExcluded: tokenSet("N/A", "n/a", "NULL", "null", ""),
		FallbackRaceTime:    FallbackRaceTime,
		UnknownValue:        UnknownValue,
		DateLayout:          DateLayout,
		CenturyCutoff:       CenturyCutoff,
		RequiredColumns:     []string{ColumnGrandPrix, ColumnDate, ColumnWinner, ColumnLaps, ColumnTime},
		Columns: map[string]ColumnPolicy{
			ColumnLaps: {Impute: ImputeMedian, StringNull: NullMedianText, Coerce: CoerceInteger},
			ColumnTime: {Impute: ImputeAverageTime, StringNull: NullAverageTime},
			ColumnDate: {Coerce: CoerceTwoDigitYearDate},
		},
	}
}

// Column returns the policy for name.
func (p Policy) Column(name string) ColumnPolicy {
	return p.Columns[name]
}

// IsNullToken reports whether v is a string in the null token set.
func (p Policy) IsNullToken(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, found := p.NullTokens[s]
	return found
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.NullTokens == nil {
		p.NullTokens = def.NullTokens
	}
	if p.AverageTimeExcluded == nil {
		p.AverageTimeExcluded = def.AverageTimeExcluded
	}
	if p.FallbackRaceTime == "" {
		p.FallbackRaceTime = def.FallbackRaceTime
	}
	if p.UnknownValue == "" {
		p.UnknownValue = def.UnknownValue
	}
	if p.DateLayout == "" {
		p.DateLayout = def.DateLayout
	}
	if p.CenturyCutoff == 0 {
		p.CenturyCutoff = def.CenturyCutoff
	}
	if p.RequiredColumns == nil {
		p.RequiredColumns = def.RequiredColumns
	}
	if p.Columns == nil {
		p.Columns = def.Columns
	}
	return p
}

func tokenSet(tokens ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
