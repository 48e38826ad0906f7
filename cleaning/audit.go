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
	"time"

	"github.com/aaronlmathis/raceclean/core"
)

// Operations recorded on substitutions.
const (
	OpMedianFill      = "median_fill"
	OpAverageTimeFill = "average_time_fill"
	OpModeFill        = "mode_fill"
	OpUnknownFill     = "unknown_fill"
	OpNumericCoercion = "numeric_coercion"
	OpDateParse       = "date_parse"
)

// Reasons recorded on substitutions.
const (
	ReasonMissingValue     = "missing_value"
	ReasonNullToken        = "null_token"
	ReasonUnparsableNumber = "unparsable_number"
	ReasonUnparsableDate   = "unparsable_date"
)

// Substitution is one replaced value.
type Substitution struct {
	RunID         string
	Column        string
	Row           int
	OriginalValue interface{}
	NewValue      interface{}
	Operation     string
	Reason        string
	CleanedAt     time.Time
}

// AuditColumns is the column order of AuditTable.
var AuditColumns = []string{
	"run_id", "column_name", "row_index", "original_value", "new_value",
	"cleaning_operation", "cleaning_reason", "cleaned_at",
}

// Substitutions returns a copy of the audit trail in the order the values were replaced.
func (e *Engine) Substitutions() []Substitution {
	return append([]Substitution(nil), e.substitutions...)
}

// AuditTable returns the audit trail as a table ready for a sink. Values are stored as text,
// missing originals as nil.
func (e *Engine) AuditTable() *core.Table {
	t := core.NewTable(AuditColumns)
	for _, s := range e.substitutions {
		t.Rows = append(t.Rows, core.Record{
			"run_id":             s.RunID,
			"column_name":        s.Column,
			"row_index":          s.Row,
			"original_value":     auditText(s.OriginalValue),
			"new_value":          auditText(s.NewValue),
			"cleaning_operation": s.Operation,
			"cleaning_reason":    s.Reason,
			"cleaned_at":         s.CleanedAt,
		})
	}
	return t
}

func auditText(v interface{}) interface{} {
	if core.IsMissing(v) {
		return nil
	}
	return core.FormatValue(v)
}

// replace sets column on rows to value and records one substitution per row.
func (e *Engine) replace(column string, rows []int, value interface{}, op, reason string) {
	now := e.now().UTC()
	for _, idx := range rows {
		e.substitutions = append(e.substitutions, Substitution{
			RunID:         e.runID,
			Column:        column,
			Row:           idx,
			OriginalValue: e.data.Get(idx, column),
			NewValue:      value,
			Operation:     op,
			Reason:        reason,
			CleanedAt:     now,
		})
		e.data.Set(idx, column, value)
	}
}
