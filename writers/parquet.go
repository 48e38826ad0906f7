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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/aaronlmathis/raceclean/core"
)

// ParquetWriterError wraps Parquet-specific write errors with context about the operation.
type ParquetWriterError struct {
	Op  string // Operation that failed (e.g., "schema", "write_batch", "open_file")
	Err error  // Underlying error
}

// Error returns the error string for ParquetWriterError.
func (e *ParquetWriterError) Error() string {
	return fmt.Sprintf("parquet writer %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for ParquetWriterError.
func (e *ParquetWriterError) Unwrap() error {
	return e.Err
}

// ParquetWriterOptions configures the Parquet writer.
type ParquetWriterOptions struct {
	BatchSize    int64                 // Number of records to buffer before writing
	Compression  compress.Compression  // Compression algorithm
	FieldOrder   []string              // Explicit field ordering
	ColumnTypes  map[string]ColumnType // Declared column types; others are inferred from the first record
	RowGroupSize int64                 // Maximum rows per row group
}

// ParquetWriterStats holds statistics about the Parquet writer's performance.
type ParquetWriterStats struct {
	RecordsWritten  int64
	BatchesWritten  int64
	FlushDuration   time.Duration
	LastFlushTime   time.Time
	NullValueCounts map[string]int64
}

// WriterOptionParquet represents a configuration function for ParquetWriterOptions.
type WriterOptionParquet func(*ParquetWriterOptions)

// WithParquetBatchSize sets the number of records to buffer before writing a batch.
func WithParquetBatchSize(size int64) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) {
		opts.BatchSize = size
	}
}

// WithCompression sets the Parquet compression algorithm.
func WithCompression(compression compress.Compression) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) {
		opts.Compression = compression
	}
}

// WithFieldOrder sets the explicit field ordering for the Parquet schema.
func WithFieldOrder(fields []string) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) {
		opts.FieldOrder = append([]string(nil), fields...)
	}
}

// WithParquetColumnTypes fixes the schema types, e.g. from InferColumnTypes over a whole table.
func WithParquetColumnTypes(types map[string]ColumnType) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) {
		opts.ColumnTypes = types
	}
}

// WithRowGroupSize sets the row group size for the Parquet file.
func WithRowGroupSize(size int64) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) {
		opts.RowGroupSize = size
	}
}

// withDefaults applies default values to ParquetWriterOptions.
func (opts *ParquetWriterOptions) withDefaults() *ParquetWriterOptions {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1000
	}
	if opts.RowGroupSize <= 0 {
		opts.RowGroupSize = 10000
	}
	if opts.Compression == 0 {
		opts.Compression = compress.Codecs.Snappy
	}
	return opts
}

// ParquetWriter implements core.DataSink for Parquet output.
// The schema is fixed on the first write (or on Close for an empty table) from the declared
// column types, falling back to the first record's values.
type ParquetWriter struct {
	sink         io.Writer
	closer       io.Closer
	writer       *pqarrow.FileWriter
	schema       *arrow.Schema
	fieldOrder   []string
	builders     []array.Builder
	recordBuffer []core.Record
	allocator    memory.Allocator
	opts         *ParquetWriterOptions
	stats        ParquetWriterStats
	closed       bool
	errorState   bool
	mu           sync.Mutex
}

// NewParquetWriter creates a Parquet writer over w. Close closes w.
func NewParquetWriter(w io.WriteCloser, options ...WriterOptionParquet) (*ParquetWriter, error) {
	opts := &ParquetWriterOptions{}
	for _, option := range options {
		option(opts)
	}
	opts = opts.withDefaults()

	return &ParquetWriter{
		sink:         w,
		closer:       w,
		fieldOrder:   append([]string(nil), opts.FieldOrder...),
		recordBuffer: make([]core.Record, 0, opts.BatchSize),
		allocator:    memory.NewGoAllocator(),
		opts:         opts,
		stats:        ParquetWriterStats{NullValueCounts: make(map[string]int64)},
	}, nil
}

// NewParquetFileWriter creates the file (and its parent directories) and returns a writer for it.
func NewParquetFileWriter(filename string, options ...WriterOptionParquet) (*ParquetWriter, error) {
	if dir := filepath.Dir(filename); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &ParquetWriterError{Op: "create_directory", Err: err}
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, &ParquetWriterError{Op: "open_file", Err: err}
	}
	return NewParquetWriter(file, options...)
}

// Stats returns the current statistics of the Parquet writer.
func (p *ParquetWriter) Stats() ParquetWriterStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	statsCopy := p.stats
	statsCopy.NullValueCounts = make(map[string]int64, len(p.stats.NullValueCounts))
	for k, v := range p.stats.NullValueCounts {
		statsCopy.NullValueCounts[k] = v
	}
	return statsCopy
}

// Write implements the core.DataSink interface.
func (p *ParquetWriter) Write(ctx context.Context, record core.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return &ParquetWriterError{Op: "write", Err: fmt.Errorf("parquet writer is closed")}
	}
	if p.errorState {
		return &ParquetWriterError{Op: "write", Err: fmt.Errorf("writer is in error state")}
	}

	if p.schema == nil {
		if err := p.initializeSchema(record); err != nil {
			p.errorState = true
			return err
		}
	}

	p.recordBuffer = append(p.recordBuffer, record)
	p.stats.RecordsWritten++

	if int64(len(p.recordBuffer)) >= p.opts.BatchSize {
		if err := p.flushBatch(); err != nil {
			p.errorState = true
			return err
		}
	}
	return nil
}

// Flush implements the core.DataSink interface.
// Forces any buffered records to be written as a record batch.
func (p *ParquetWriter) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushBatch()
}

// Close implements the core.DataSink interface.
// Writes remaining records and the file footer, then closes the underlying writer.
func (p *ParquetWriter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	if p.schema == nil && len(p.fieldOrder) > 0 && !p.errorState {
		firstErr = p.initializeSchema(core.Record{})
	}
	if firstErr == nil && !p.errorState {
		firstErr = p.flushBatch()
	}

	for _, builder := range p.builders {
		builder.Release()
	}
	p.builders = nil

	if p.writer != nil {
		// The file writer closes the sink it was given.
		if err := p.writer.Close(); err != nil && firstErr == nil {
			firstErr = &ParquetWriterError{Op: "close_writer", Err: err}
		}
		p.writer = nil
	}
	if p.closer != nil {
		if err := p.closer.Close(); err != nil && !errors.Is(err, os.ErrClosed) && firstErr == nil {
			firstErr = &ParquetWriterError{Op: "close", Err: err}
		}
	}
	return firstErr
}

// initializeSchema builds the Arrow schema and the file writer (must hold mutex).
func (p *ParquetWriter) initializeSchema(record core.Record) error {
	if len(p.fieldOrder) == 0 {
		for name := range record {
			p.fieldOrder = append(p.fieldOrder, name)
		}
		sort.Strings(p.fieldOrder)
	}

	fields := make([]arrow.Field, len(p.fieldOrder))
	for i, name := range p.fieldOrder {
		colType, ok := p.opts.ColumnTypes[name]
		if !ok {
			colType = ColumnText
			if v := record[name]; !core.IsMissing(v) {
				colType = columnTypeOf(v)
			}
		}
		fields[i] = arrow.Field{Name: name, Type: arrowType(colType), Nullable: true}
	}
	p.schema = arrow.NewSchema(fields, nil)

	props := parquet.NewWriterProperties(
		parquet.WithCompression(p.opts.Compression),
		parquet.WithMaxRowGroupLength(p.opts.RowGroupSize),
	)
	writer, err := pqarrow.NewFileWriter(p.schema, p.sink, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return &ParquetWriterError{Op: "create_writer", Err: err}
	}
	p.writer = writer

	p.builders = make([]array.Builder, len(fields))
	for i, f := range fields {
		p.builders[i] = array.NewBuilder(p.allocator, f.Type)
	}
	return nil
}

func arrowType(c ColumnType) arrow.DataType {
	switch c {
	case ColumnInteger:
		return arrow.PrimitiveTypes.Int64
	case ColumnReal:
		return arrow.PrimitiveTypes.Float64
	case ColumnTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	case ColumnBoolean:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// flushBatch writes the buffered records as one Arrow record batch (must hold mutex).
func (p *ParquetWriter) flushBatch() error {
	if len(p.recordBuffer) == 0 || p.writer == nil {
		return nil
	}

	start := time.Now()

	for _, record := range p.recordBuffer {
		for i, name := range p.fieldOrder {
			if !p.appendValue(p.builders[i], record[name]) {
				p.stats.NullValueCounts[name]++
			}
		}
	}

	arrays := make([]arrow.Array, len(p.builders))
	for i, builder := range p.builders {
		arrays[i] = builder.NewArray()
	}
	batch := array.NewRecord(p.schema, arrays, int64(len(p.recordBuffer)))
	for _, arr := range arrays {
		arr.Release()
	}
	defer batch.Release()

	if err := p.writer.Write(batch); err != nil {
		return &ParquetWriterError{Op: "write_batch", Err: err}
	}

	p.stats.BatchesWritten++
	p.stats.FlushDuration += time.Since(start)
	p.stats.LastFlushTime = time.Now()
	p.recordBuffer = p.recordBuffer[:0]
	return nil
}

// appendValue appends value to builder and reports whether a non-null value was stored.
// Values that do not fit the column type are stored as null, except text columns which take any value.
func (p *ParquetWriter) appendValue(builder array.Builder, value interface{}) bool {
	if core.IsMissing(value) {
		builder.AppendNull()
		return false
	}

	switch b := builder.(type) {
	case *array.StringBuilder:
		b.Append(core.FormatValue(value))
		return true
	case *array.Int64Builder:
		switch v := value.(type) {
		case int:
			b.Append(int64(v))
			return true
		case int32:
			b.Append(int64(v))
			return true
		case int64:
			b.Append(v)
			return true
		}
	case *array.Float64Builder:
		if f, ok := core.ToFloat(value); ok {
			if _, isString := value.(string); !isString {
				b.Append(f)
				return true
			}
		}
	case *array.TimestampBuilder:
		if v, ok := value.(time.Time); ok {
			b.Append(arrow.Timestamp(v.UnixMicro()))
			return true
		}
	case *array.BooleanBuilder:
		if v, ok := value.(bool); ok {
			b.Append(v)
			return true
		}
	}
	builder.AppendNull()
	return false
}
