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

package writers

import (
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresWriterError wraps PostgreSQL-specific write errors with context about the operation.
type PostgresWriterError struct {
	Op  string // The operation being performed (e.g., "write", "connect")
	Err error  // The underlying error
}

// Error returns the error string for PostgresWriterError.
func (e *PostgresWriterError) Error() string {
	return fmt.Sprintf("postgres writer %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for PostgresWriterError.
func (e *PostgresWriterError) Unwrap() error {
	return e.Err
}

var postgresDialect = dialect{
	driver: "postgres",
	types: map[ColumnType]string{
		ColumnText:      "TEXT",
		ColumnInteger:   "BIGINT",
		ColumnReal:      "DOUBLE PRECISION",
		ColumnTimestamp: "TIMESTAMP",
		ColumnBoolean:   "BOOLEAN",
	},
	value: func(v interface{}) interface{} { return v },
	newError: func(op string, err error) error {
		return &PostgresWriterError{Op: op, Err: err}
	},
}

// PostgresWriter implements core.DataSink for PostgreSQL output through lib/pq.
// By default the target table is dropped and recreated before the first insert.
type PostgresWriter struct {
	*sqlWriter
}

// NewPostgresWriter connects to PostgreSQL and returns a ready-to-use writer.
func NewPostgresWriter(opts ...WriterOptionSQL) (*PostgresWriter, error) {
	w, err := newSQLWriter(postgresDialect, opts)
	if err != nil {
		return nil, err
	}
	return &PostgresWriter{sqlWriter: w}, nil
}
