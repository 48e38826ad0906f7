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

package core

import "context"

// ErrorStrategy selects how a streaming pipeline reacts to a failed record.
type ErrorStrategy int

const (
	// FailFast stops processing on the first error encountered.
	FailFast ErrorStrategy = iota
	// SkipErrors drops the failed record and keeps going.
	SkipErrors
	// CollectErrors keeps going and returns every failure, joined, once the source is drained.
	CollectErrors
)

// String returns the lower-case name used in configuration files.
func (s ErrorStrategy) String() string {
	switch s {
	case FailFast:
		return "fail_fast"
	case SkipErrors:
		return "skip"
	case CollectErrors:
		return "collect"
	default:
		return "unknown"
	}
}

// ParseErrorStrategy maps a configuration value to an ErrorStrategy.
// Unknown values fall back to FailFast.
func ParseErrorStrategy(s string) ErrorStrategy {
	switch s {
	case "skip":
		return SkipErrors
	case "collect":
		return CollectErrors
	default:
		return FailFast
	}
}

// ErrorHandler receives records that failed while streaming.
// Returning a non-nil error stops the pipeline; returning nil continues.
type ErrorHandler interface {
	HandleError(ctx context.Context, record Record, err error) error
}

// ErrorHandlerFunc lets an ordinary function act as an ErrorHandler.
type ErrorHandlerFunc func(ctx context.Context, record Record, err error) error

// HandleError implements the ErrorHandler interface for ErrorHandlerFunc.
func (f ErrorHandlerFunc) HandleError(ctx context.Context, record Record, err error) error {
	return f(ctx, record, err)
}
