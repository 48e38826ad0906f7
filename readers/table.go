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

package readers

import (
	"context"
	"io"
	"sort"

	"github.com/aaronlmathis/raceclean/core"
)

// headerSource is implemented by readers that know their column order up front.
type headerSource interface {
	Headers() []string
}

// ReadTable drains a DataSource into an in-memory table.
// Column order comes from the source when it exposes Headers, otherwise from the sorted keys of the
// first record. The source is not closed.
func ReadTable(ctx context.Context, src core.DataSource) (*core.Table, error) {
	var columns []string
	if hs, ok := src.(headerSource); ok {
		columns = hs.Headers()
	}

	table := core.NewTable(columns)
	for {
		record, err := src.Read(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(table.Columns) == 0 {
			for k := range record {
				table.Columns = append(table.Columns, k)
			}
			sort.Strings(table.Columns)
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// TableReader streams the rows of an in-memory table as a core.DataSource.
// Each Read returns a copy so downstream transformers cannot mutate the table.
type TableReader struct {
	table *core.Table
	next  int
}

// NewTableReader returns a DataSource over t.
func NewTableReader(t *core.Table) *TableReader {
	return &TableReader{table: t}
}

// Read implements the core.DataSource interface.
func (r *TableReader) Read(ctx context.Context) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.table == nil || r.next >= len(r.table.Rows) {
		return nil, io.EOF
	}
	record := r.table.Rows[r.next].Clone()
	r.next++
	return record, nil
}

// Headers returns the table's column order.
func (r *TableReader) Headers() []string {
	if r.table == nil {
		return nil
	}
	return append([]string(nil), r.table.Columns...)
}

// Close implements the core.DataSource interface.
func (r *TableReader) Close() error {
	return nil
}
