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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aaronlmathis/raceclean/core"
)

// JSONWriterError wraps JSON-specific write errors with context.
type JSONWriterError struct {
	Op  string
	Err error
}

func (e *JSONWriterError) Error() string {
	return fmt.Sprintf("json writer %s: %v", e.Op, e.Err)
}

func (e *JSONWriterError) Unwrap() error {
	return e.Err
}

// JSONWriterStats holds JSON write statistics.
type JSONWriterStats struct {
	RecordsWritten int64
	BytesWritten   int64
	LastWriteTime  time.Time
}

// JSONWriter implements core.DataSink for JSON lines files.
// Missing values are written as null and midnight dates as "YYYY-MM-DD".
type JSONWriter struct {
	writer *bufio.Writer
	closer io.Closer
	stats  JSONWriterStats
	mu     sync.Mutex
}

// NewJSONWriter creates a new JSON writer for line-delimited JSON output
func NewJSONWriter(w io.WriteCloser) *JSONWriter {
	return &JSONWriter{
		writer: bufio.NewWriter(w),
		closer: w,
	}
}

// Write implements the core.DataSink interface
func (j *JSONWriter) Write(ctx context.Context, record core.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make(map[string]interface{}, len(record))
	for k, v := range record {
		out[k] = jsonValue(v)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return &JSONWriterError{Op: "marshal", Err: err}
	}
	data = append(data, '\n')

	n, err := j.writer.Write(data)
	if err != nil {
		return &JSONWriterError{Op: "write", Err: err}
	}

	j.stats.RecordsWritten++
	j.stats.BytesWritten += int64(n)
	j.stats.LastWriteTime = time.Now()
	return nil
}

// Flush implements the core.DataSink interface
func (j *JSONWriter) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.writer.Flush(); err != nil {
		return &JSONWriterError{Op: "flush", Err: err}
	}
	return nil
}

// Close implements the core.DataSink interface
func (j *JSONWriter) Close() error {
	flushErr := j.Flush()
	if j.closer != nil {
		if err := j.closer.Close(); err != nil && flushErr == nil {
			return err
		}
	}
	return flushErr
}

// Stats returns write statistics.
func (j *JSONWriter) Stats() JSONWriterStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats
}

func jsonValue(v interface{}) interface{} {
	if core.IsMissing(v) {
		return nil
	}
	if _, ok := v.(time.Time); ok {
		return core.FormatValue(v)
	}
	return v
}
