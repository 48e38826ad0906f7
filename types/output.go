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

package types

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aaronlmathis/raceclean/core"
	"github.com/aaronlmathis/raceclean/readers"
	"github.com/aaronlmathis/raceclean/writers"
)

// OutputFormat represents a supported sink format.
type OutputFormat int

const (
	FormatCSV OutputFormat = iota
	FormatJSON
	FormatParquet
	FormatPostgres
	FormatSQLite
)

func (f OutputFormat) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatParquet:
		return "parquet"
	case FormatPostgres:
		return "postgres"
	case FormatSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// ParseOutputFormat maps a name ("csv", "json", "jsonl", "parquet", "postgres", "sqlite") to a format.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json", "jsonl", "ndjson":
		return FormatJSON, nil
	case "parquet":
		return FormatParquet, nil
	case "postgres", "postgresql":
		return FormatPostgres, nil
	case "sqlite", "sqlite3":
		return FormatSQLite, nil
	default:
		return 0, fmt.Errorf("unknown output format %q", s)
	}
}

// FormatFromPath guesses the file format from the path extension, defaulting to CSV.
func FormatFromPath(path string) OutputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	case ".parquet":
		return FormatParquet
	default:
		return FormatCSV
	}
}

// SinkOptions carries the table shape every sink needs to lay out its output.
type SinkOptions struct {
	Columns     []string
	ColumnTypes map[string]writers.ColumnType
	TableName   string
	Mode        writers.TableMode
	BatchSize   int
}

// OutputLocation creates a DataSink for a given format.
type OutputLocation interface {
	NewSink(ctx context.Context, format OutputFormat, opts SinkOptions) (core.DataSink, error)
}

// FileLocation writes output to a local filesystem path.
type FileLocation struct {
	Path string
}

// NewSink instantiates a writer for the file location.
func (f FileLocation) NewSink(ctx context.Context, format OutputFormat, opts SinkOptions) (core.DataSink, error) {
	switch format {
	case FormatCSV, FormatJSON:
		if dir := filepath.Dir(f.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		file, err := os.Create(f.Path)
		if err != nil {
			return nil, err
		}
		return fileSink(file, format, opts)
	case FormatParquet:
		return writers.NewParquetFileWriter(f.Path, parquetOptions(opts)...)
	default:
		return nil, fmt.Errorf("unsupported format %s for FileLocation", format)
	}
}

// S3PutObjectAPI is the subset of the S3 client used for uploads.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Location writes objects to an S3 bucket. The object is uploaded when the sink is closed.
type S3Location struct {
	Bucket string
	Key    string
	Client S3PutObjectAPI
	S3     []readers.S3Option
}

type s3WriteCloser struct {
	ctx    context.Context
	buf    *bytes.Buffer
	client S3PutObjectAPI
	bucket string
	key    string
	closed bool
}

func (s *s3WriteCloser) Write(p []byte) (int, error) { return s.buf.Write(p) }

// Close uploads the buffered bytes. Later calls are no-ops.
func (s *s3WriteCloser) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_, err := s.client.PutObject(s.ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Body:   bytes.NewReader(s.buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

// NewSink creates a writer uploading to S3.
func (s S3Location) NewSink(ctx context.Context, format OutputFormat, opts SinkOptions) (core.DataSink, error) {
	if s.Client == nil {
		client, err := readers.NewS3Client(ctx, s.S3...)
		if err != nil {
			return nil, err
		}
		s.Client = client
	}

	upload := &s3WriteCloser{ctx: ctx, buf: &bytes.Buffer{}, client: s.Client, bucket: s.Bucket, key: s.Key}
	switch format {
	case FormatCSV, FormatJSON:
		return fileSink(upload, format, opts)
	case FormatParquet:
		return writers.NewParquetWriter(upload, parquetOptions(opts)...)
	default:
		return nil, fmt.Errorf("unsupported format %s for S3Location", format)
	}
}

// DatabaseLocation directs output to a PostgreSQL or SQLite table.
type DatabaseLocation struct {
	DSN string
}

// NewSink instantiates the relational writer for format.
func (d DatabaseLocation) NewSink(ctx context.Context, format OutputFormat, opts SinkOptions) (core.DataSink, error) {
	sqlOpts := []writers.WriterOptionSQL{
		writers.WithDSN(d.DSN),
		writers.WithTableName(opts.TableName),
		writers.WithColumns(opts.Columns),
		writers.WithColumnTypes(opts.ColumnTypes),
		writers.WithTableMode(opts.Mode),
		writers.WithSQLBatchSize(opts.BatchSize),
	}
	switch format {
	case FormatPostgres:
		return writers.NewPostgresWriter(sqlOpts...)
	case FormatSQLite:
		return writers.NewSQLiteWriter(sqlOpts...)
	default:
		return nil, fmt.Errorf("unsupported format %s for DatabaseLocation", format)
	}
}

// ParseLocation returns an S3Location for s3:// URIs and a FileLocation otherwise.
func ParseLocation(uri string) (OutputLocation, error) {
	if strings.HasPrefix(uri, "s3://") {
		bucket, key, err := readers.ParseS3URI(uri)
		if err != nil {
			return nil, err
		}
		return S3Location{Bucket: bucket, Key: key}, nil
	}
	return FileLocation{Path: uri}, nil
}

func fileSink(w io.WriteCloser, format OutputFormat, opts SinkOptions) (core.DataSink, error) {
	if format == FormatJSON {
		return writers.NewJSONWriter(w), nil
	}
	var csvOpts []writers.WriterOptionCSV
	if len(opts.Columns) > 0 {
		csvOpts = append(csvOpts, writers.WithHeaders(opts.Columns))
	}
	return writers.NewCSVWriter(w, csvOpts...)
}

func parquetOptions(opts SinkOptions) []writers.WriterOptionParquet {
	var out []writers.WriterOptionParquet
	if len(opts.Columns) > 0 {
		out = append(out, writers.WithFieldOrder(opts.Columns))
	}
	if opts.ColumnTypes != nil {
		out = append(out, writers.WithParquetColumnTypes(opts.ColumnTypes))
	}
	return out
}
