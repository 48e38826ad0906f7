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

package etl

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Stage names, in run order.
const (
	StageExtract  = "extract"
	StagePreview  = "preview"
	StageClean    = "clean"
	StageValidate = "validate"
	StageExport   = "export"
	StageLoad     = "load"
	StageAudit    = "audit"
)

// StageError wraps the failure of a required stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageResult records timing and record counts of one executed stage.
type StageResult struct {
	Name       string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	RecordsIn  int64
	RecordsOut int64
	Err        error
}

// Success reports whether the stage finished without error.
func (r StageResult) Success() bool {
	return r.Err == nil
}

// stage is one step of a run. Optional stages log their failure and let the run continue.
type stage struct {
	name     string
	optional bool
	run      func(ctx context.Context, res *StageResult) error
}

// runStages executes stages in order and stops at the first failed required stage.
func (d *Driver) runStages(ctx context.Context, stages []stage) ([]StageResult, error) {
	results := make([]StageResult, 0, len(stages))
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return results, &StageError{Stage: s.name, Err: err}
		}

		res := StageResult{Name: s.name, StartTime: time.Now()}
		err := s.run(ctx, &res)
		res.EndTime = time.Now()
		res.Duration = res.EndTime.Sub(res.StartTime)
		res.Err = err
		results = append(results, res)

		fields := []zap.Field{
			zap.String("stage", s.name),
			zap.Duration("duration", res.Duration),
			zap.Int64("records_in", res.RecordsIn),
			zap.Int64("records_out", res.RecordsOut),
		}
		if err == nil {
			d.logger.Info("stage completed", fields...)
			continue
		}
		if s.optional {
			d.logger.Warn("optional stage failed, continuing", append(fields, zap.Error(err))...)
			continue
		}
		d.logger.Error("stage failed", append(fields, zap.Error(err))...)
		return results, &StageError{Stage: s.name, Err: err}
	}
	return results, nil
}
