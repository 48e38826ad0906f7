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
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aaronlmathis/raceclean/core"
	"github.com/aaronlmathis/raceclean/validators"
)

// Package cleaning repairs the race results table: it reports missing data, imputes LAPS and TIME,
// replaces null-like text tokens, coerces LAPS and DATE, and summarizes the result. The engine never
// adds or removes rows.

// ErrMissingColumn is returned by New when a required column is absent from the input.
var ErrMissingColumn = errors.New("missing required column")

// Engine owns a working copy of the input table and an untouched original for comparison.
// It is not safe for concurrent use.
type Engine struct {
	data          *core.Table
	original      *core.Table
	policy        Policy
	logger        *zap.Logger
	out           io.Writer
	runID         string
	now           func() time.Time
	substitutions []Substitution
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. The engine logs under the "cleaning" name.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithOutput sets where progress text (reports, substitution counts, summary) is printed.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.out = w
		}
	}
}

// WithPolicy replaces the cleaning rules. Unset fields take the DefaultPolicy values.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p.withDefaults()
	}
}

// WithRunID sets the id stamped on audit entries instead of a generated UUID.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}

// New creates an engine over a deep copy of t. It fails when t is nil or lacks a required column.
func New(t *core.Table, opts ...Option) (*Engine, error) {
	if t == nil {
		return nil, errors.New("cleaning: input table cannot be nil")
	}

	e := &Engine{
		policy: DefaultPolicy(),
		logger: zap.NewNop(),
		out:    io.Discard,
		runID:  uuid.NewString(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("cleaning").With(zap.String("run_id", e.runID))

	schema := validators.NewDataQualityValidator(0, e.policy.RequiredColumns)
	if missing := schema.MissingFields(t); len(missing) > 0 {
		return nil, fmt.Errorf("cleaning: %w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	e.data = t.Clone()
	e.original = t.Clone()
	return e, nil
}

// RunID identifies this engine's audit entries.
func (e *Engine) RunID() string {
	return e.runID
}

// Policy returns the rules in effect.
func (e *Engine) Policy() Policy {
	return e.policy
}

// CleanedData returns the working table. Callers own it after the run.
func (e *Engine) CleanedData() *core.Table {
	return e.data
}

// Original returns a copy of the untouched input.
func (e *Engine) Original() *core.Table {
	return e.original.Clone()
}

func (e *Engine) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}
