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

// Table is an ordered, in-memory set of records sharing one column list.
// Rows keep their input order; Columns fixes the order used for display and output.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable builds a table from a column list and rows. The rows are used as given.
func NewTable(columns []string, rows ...Record) *Table {
	return &Table{
		Columns: append([]string(nil), columns...),
		Rows:    rows,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) {
	if t == nil {
		return 0, 0
	}
	return len(t.Rows), len(t.Columns)
}

// Clone returns a deep copy: a new column slice and a new record per row.
// Mutating the clone never touches the receiver.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	rows := make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	return &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    rows,
	}
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Get returns the value at (row, column); absent keys read as nil.
func (t *Table) Get(row int, column string) interface{} {
	return t.Rows[row][column]
}

// Set stores v at (row, column).
func (t *Table) Set(row int, column string, v interface{}) {
	if t.Rows[row] == nil {
		t.Rows[row] = make(Record)
	}
	t.Rows[row][column] = v
}

// Values returns a copy of one column, in row order.
func (t *Table) Values(column string) []interface{} {
	out := make([]interface{}, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[column]
	}
	return out
}

// Head returns a copy of the first n rows (all rows when n exceeds the length or is negative).
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	head := &Table{Columns: append([]string(nil), t.Columns...), Rows: make([]Record, n)}
	for i := 0; i < n; i++ {
		head.Rows[i] = t.Rows[i].Clone()
	}
	return head
}

// CountMissing returns the number of missing values in the table.
func (t *Table) CountMissing() int {
	total := 0
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			if IsMissing(r[c]) {
				total++
			}
		}
	}
	return total
}
