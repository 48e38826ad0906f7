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
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/aaronlmathis/raceclean/pipeline"
	"github.com/aaronlmathis/raceclean/readers"
	"github.com/aaronlmathis/raceclean/writers"
)

// ExportCleanedData writes the working table as CSV to path. The file is written next to path and
// renamed into place only once complete, so on failure path is left as it was. The diagnostic is
// printed and logged and the error is returned for the caller to ignore or act on.
func (e *Engine) ExportCleanedData(ctx context.Context, path string) error {
	if err := e.exportCSV(ctx, path); err != nil {
		e.printf("Error exporting data: %v\n", err)
		e.logger.Error("export failed", zap.String("path", path), zap.Error(err))
		return err
	}
	e.printf("Cleaned data exported successfully to: %s\n", path)
	e.logger.Info("exported cleaned data", zap.String("path", path), zap.Int("rows", e.data.Len()))
	return nil
}

func (e *Engine) exportCSV(ctx context.Context, path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("create %s: %w", path, err)
	}

	sink, err := writers.NewCSVWriter(tmp, writers.WithHeaders(e.data.Columns))
	if err != nil {
		tmp.Close()
		return err
	}

	p, err := pipeline.NewPipeline().
		From(readers.NewTableReader(e.data)).
		To(sink).
		Build()
	if err != nil {
		sink.Close()
		return err
	}
	if _, err = p.Execute(ctx); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
