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
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteWriterError wraps SQLite-specific write errors with context about the operation.
type SQLiteWriterError struct {
	Op  string
	Err error
}

func (e *SQLiteWriterError) Error() string {
	return fmt.Sprintf("sqlite writer %s: %v", e.Op, e.Err)
}

func (e *SQLiteWriterError) Unwrap() error {
	return e.Err
}

// sqliteTimeLayout matches the text form SQLite's date functions understand.
const sqliteTimeLayout = "2006-01-02 15:04:05"

var sqliteDialect = dialect{
	driver: "sqlite",
	types: map[ColumnType]string{
		ColumnText:      "TEXT",
		ColumnInteger:   "INTEGER",
		ColumnReal:      "REAL",
		ColumnTimestamp: "TIMESTAMP",
		ColumnBoolean:   "INTEGER",
	},
	value: sqliteValue,
	newError: func(op string, err error) error {
		return &SQLiteWriterError{Op: op, Err: err}
	},
}

func sqliteValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return t.UTC().Format(sqliteTimeLayout)
	default:
		return v
	}
}

// SQLiteWriter implements core.DataSink for a SQLite database file (pure Go driver, no cgo).
// The DSN is the database path; the file is created if it does not exist.
type SQLiteWriter struct {
	*sqlWriter
}

// NewSQLiteWriter opens the database and returns a ready-to-use writer.
// Transactions are on by default since SQLite commits each bare insert to disk.
func NewSQLiteWriter(opts ...WriterOptionSQL) (*SQLiteWriter, error) {
	opts = append([]WriterOptionSQL{WithTransactionMode(true), WithConnectionPool(1, 0)}, opts...)
	w, err := newSQLWriter(sqliteDialect, opts)
	if err != nil {
		return nil, err
	}
	return &SQLiteWriter{sqlWriter: w}, nil
}
