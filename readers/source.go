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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aaronlmathis/raceclean/core"
)

// SourceError reports a failure to locate or open the input file.
type SourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// SourceOptions controls how OpenSource resolves a path.
type SourceOptions struct {
	// S3Client fetches s3:// paths. When nil a client is built from S3 and the default AWS chain.
	S3Client S3GetObjectAPI
	S3       []S3Option
	CSV      []ReaderOptionCSV
}

// OpenSource opens a CSV source from a local path or an s3://bucket/key URI.
func OpenSource(ctx context.Context, path string, opts SourceOptions) (*CSVReader, error) {
	var (
		body io.ReadCloser
		err  error
	)

	if strings.HasPrefix(path, "s3://") {
		client := opts.S3Client
		if client == nil {
			client, err = NewS3Client(ctx, opts.S3...)
			if err != nil {
				return nil, &SourceError{Op: "s3_client", Path: path, Err: err}
			}
		}
		body, err = GetS3Object(ctx, client, path)
	} else {
		body, err = os.Open(path)
	}
	if err != nil {
		return nil, &SourceError{Op: "open", Path: path, Err: err}
	}

	reader, err := NewCSVReader(body, opts.CSV...)
	if err != nil {
		body.Close()
		return nil, &SourceError{Op: "read", Path: path, Err: err}
	}
	return reader, nil
}

// LoadTable opens path, drains it into a table and closes the source.
// The reader stats are returned for logging.
func LoadTable(ctx context.Context, path string, opts SourceOptions) (*core.Table, CSVReaderStats, error) {
	reader, err := OpenSource(ctx, path, opts)
	if err != nil {
		return nil, CSVReaderStats{}, err
	}
	defer reader.Close()

	table, err := ReadTable(ctx, reader)
	if err != nil {
		return nil, reader.Stats(), &SourceError{Op: "read", Path: path, Err: err}
	}
	return table, reader.Stats(), nil
}
