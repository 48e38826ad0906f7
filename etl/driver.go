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

// Package etl sequences the RaceClean run: extract the CSV, preview it, clean it, check it,
// export it and load it into the relational store.
package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/aaronlmathis/raceclean/cleaning"
	"github.com/aaronlmathis/raceclean/config"
	"github.com/aaronlmathis/raceclean/core"
	"github.com/aaronlmathis/raceclean/pipeline"
	"github.com/aaronlmathis/raceclean/readers"
	"github.com/aaronlmathis/raceclean/render"
	"github.com/aaronlmathis/raceclean/transform"
	"github.com/aaronlmathis/raceclean/types"
	"github.com/aaronlmathis/raceclean/validators"
	"github.com/aaronlmathis/raceclean/writers"
)

// auditColumnTypes fixes the audit table schema even when a run made no substitutions.
var auditColumnTypes = map[string]writers.ColumnType{
	"run_id":             writers.ColumnText,
	"column_name":        writers.ColumnText,
	"row_index":          writers.ColumnInteger,
	"original_value":     writers.ColumnText,
	"new_value":          writers.ColumnText,
	"cleaning_operation": writers.ColumnText,
	"cleaning_reason":    writers.ColumnText,
	"cleaned_at":         writers.ColumnTimestamp,
}

// Driver runs the stages against one configuration.
type Driver struct {
	cfg      *config.Config
	logger   *zap.Logger
	out      io.Writer
	s3Getter readers.S3GetObjectAPI
	s3Putter types.S3PutObjectAPI
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithOutput sets where the human-readable progress is printed.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		if w != nil {
			d.out = w
		}
	}
}

// WithS3Getter sets the client used for s3:// inputs instead of one built from the AWS chain.
func WithS3Getter(client readers.S3GetObjectAPI) Option {
	return func(d *Driver) {
		d.s3Getter = client
	}
}

// WithS3Putter sets the client used for s3:// exports instead of one built from the AWS chain.
func WithS3Putter(client types.S3PutObjectAPI) Option {
	return func(d *Driver) {
		d.s3Putter = client
	}
}

// New validates cfg and returns a driver for it.
func New(cfg *config.Config, opts ...Option) (*Driver, error) {
	if cfg == nil {
		return nil, errors.New("etl: config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("etl: %w", err)
	}

	d := &Driver{cfg: cfg, logger: zap.NewNop(), out: io.Discard}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Result describes a completed run.
type Result struct {
	RunID         string
	Stages        []StageResult
	Summary       cleaning.Summary
	Cleaned       *core.Table
	Substitutions []cleaning.Substitution
}

// Stage returns the result of the named stage, if it ran.
func (r *Result) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

// Extract reads the configured input into a table.
func (d *Driver) Extract(ctx context.Context) (*core.Table, error) {
	table, stats, err := readers.LoadTable(ctx, d.cfg.Input.Path, readers.SourceOptions{
		S3Client: d.s3Getter,
		S3:       d.s3Options(),
		CSV:      []readers.ReaderOptionCSV{readers.WithCSVComma(d.cfg.Input.Comma())},
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("extracted input",
		zap.String("path", d.cfg.Input.Path),
		zap.Int64("records", stats.RecordsRead),
		zap.Duration("read_duration", stats.ReadDuration),
		zap.Any("empty_cells", stats.NullValueCounts),
	)
	return table, nil
}

// Preview prints the table shape, a per-column overview and the first n rows.
func (d *Driver) Preview(t *core.Table, n int) error {
	rows, cols := t.Shape()
	render.Banner(d.out, "EXTRACTED DATA")
	fmt.Fprintf(d.out, "Shape: (%d, %d)\n\n", rows, cols)

	columnTypes := writers.InferColumnTypes(t)
	report := cleaning.BuildMissingReport(t)
	info := make([][]string, len(t.Columns))
	for i, col := range t.Columns {
		info[i] = []string{
			col,
			strconv.Itoa(rows - report.NullValues[col]),
			columnTypes[col].String(),
		}
	}
	if err := render.Table(d.out, []string{"Column", "Non-Null", "Type"}, info); err != nil {
		return err
	}

	head := t.Head(n)
	fmt.Fprintf(d.out, "\nFirst %d rows:\n", head.Len())
	return render.Records(d.out, head.Columns, head.Rows)
}

// Report extracts the input and prints its missing-data report without cleaning it.
func (d *Driver) Report(ctx context.Context) (cleaning.MissingReport, error) {
	table, err := d.Extract(ctx)
	if err != nil {
		return cleaning.MissingReport{}, err
	}
	engine, err := d.newEngine(table)
	if err != nil {
		return cleaning.MissingReport{}, err
	}
	engine.DisplayMissingDataReport()
	return engine.CheckMissingValues(), nil
}

// Run executes extract, preview, clean, validate, export, load and audit.
// Export and audit failures are logged and do not fail the run.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	var (
		raw     *core.Table
		engine  *cleaning.Engine
		cleaned *core.Table
	)

	stages := []stage{
		{name: StageExtract, run: func(ctx context.Context, res *StageResult) error {
			t, err := d.Extract(ctx)
			if err != nil {
				return err
			}
			raw = t
			res.RecordsOut = int64(t.Len())
			return nil
		}},
		{name: StagePreview, optional: true, run: func(ctx context.Context, res *StageResult) error {
			res.RecordsIn = int64(raw.Len())
			return d.Preview(raw, d.cfg.Input.PreviewRows)
		}},
		{name: StageClean, run: func(ctx context.Context, res *StageResult) error {
			e, err := d.newEngine(raw)
			if err != nil {
				return err
			}
			engine = e
			cleaned = engine.FullCleaningProcess()
			res.RecordsIn = int64(raw.Len())
			res.RecordsOut = int64(cleaned.Len())
			return nil
		}},
		{name: StageValidate, run: func(ctx context.Context, res *StageResult) error {
			res.RecordsIn = int64(cleaned.Len())
			return d.qualityGate().Validate(cleaned)
		}},
	}

	if d.cfg.Export.Path != "" {
		stages = append(stages, stage{name: StageExport, optional: true, run: func(ctx context.Context, res *StageResult) error {
			res.RecordsIn = int64(cleaned.Len())
			if err := engine.ExportCleanedData(ctx, d.cfg.Export.Path); err != nil {
				return err
			}
			res.RecordsOut = res.RecordsIn
			return nil
		}})
	}
	for i := range d.cfg.Export.Targets {
		i := i // per-iteration copy; go.mod targets go 1.21 loop semantics
		stages = append(stages, stage{name: StageExport, optional: true, run: func(ctx context.Context, res *StageResult) error {
			res.RecordsIn = int64(cleaned.Len())
			stats, err := d.ExportTarget(ctx, cleaned, i)
			res.RecordsOut = stats.RecordsWritten
			return err
		}})
	}

	if d.cfg.Sink.Driver != config.DriverNone {
		stages = append(stages, stage{name: StageLoad, run: func(ctx context.Context, res *StageResult) error {
			res.RecordsIn = int64(cleaned.Len())
			stats, err := d.Load(ctx, cleaned, d.cfg.Sink.Table, writers.ParseTableMode(d.cfg.Sink.Mode), nil)
			res.RecordsOut = stats.RecordsWritten
			return err
		}})
		if d.cfg.Sink.AuditTable != "" {
			stages = append(stages, stage{name: StageAudit, optional: true, run: func(ctx context.Context, res *StageResult) error {
				audit := engine.AuditTable()
				res.RecordsIn = int64(audit.Len())
				stats, err := d.Load(ctx, audit, d.cfg.Sink.AuditTable, writers.TableAppend, auditColumnTypes)
				res.RecordsOut = stats.RecordsWritten
				return err
			}})
		}
	}

	results, err := d.runStages(ctx, stages)
	res := &Result{Stages: results, Cleaned: cleaned}
	if engine != nil {
		res.RunID = engine.RunID()
		res.Summary = engine.CleaningSummary()
		res.Substitutions = engine.Substitutions()
	}
	return res, err
}

// Load streams t into the configured relational store, into the named table.
// Column types are inferred from t unless columnTypes is given.
func (d *Driver) Load(ctx context.Context, t *core.Table, table string, mode writers.TableMode, columnTypes map[string]writers.ColumnType) (pipeline.Stats, error) {
	format, err := types.ParseOutputFormat(d.cfg.Sink.Driver)
	if err != nil {
		return pipeline.Stats{}, err
	}
	if columnTypes == nil {
		columnTypes = writers.InferColumnTypes(t)
	}

	sink, err := types.DatabaseLocation{DSN: d.cfg.Sink.DSN}.NewSink(ctx, format, types.SinkOptions{
		Columns:     t.Columns,
		ColumnTypes: columnTypes,
		TableName:   table,
		Mode:        mode,
		BatchSize:   d.cfg.Sink.BatchSize,
	})
	if err != nil {
		return pipeline.Stats{}, err
	}

	stats, err := d.stream(ctx, t, sink)
	if err != nil {
		return stats, fmt.Errorf("load %s: %w", table, err)
	}
	fmt.Fprintf(d.out, "Loaded %d rows into %s table %s\n", stats.RecordsWritten, format, table)
	return stats, nil
}

// ExportTarget writes t to export target i of the configuration.
func (d *Driver) ExportTarget(ctx context.Context, t *core.Table, i int) (pipeline.Stats, error) {
	target := d.cfg.Export.Targets[i]
	format, err := d.cfg.Export.TargetFormat(i)
	if err != nil {
		return pipeline.Stats{}, err
	}

	location, err := types.ParseLocation(target.Path)
	if err != nil {
		return pipeline.Stats{}, err
	}
	if s3loc, ok := location.(types.S3Location); ok {
		s3loc.Client = d.s3Putter
		s3loc.S3 = d.s3Options()
		location = s3loc
	}

	sink, err := location.NewSink(ctx, format, types.SinkOptions{
		Columns:     t.Columns,
		ColumnTypes: writers.InferColumnTypes(t),
	})
	if err != nil {
		return pipeline.Stats{}, fmt.Errorf("export %s: %w", target.Path, err)
	}

	stats, err := d.stream(ctx, t, sink)
	if err != nil {
		return stats, fmt.Errorf("export %s: %w", target.Path, err)
	}
	fmt.Fprintf(d.out, "Exported %d rows as %s to %s\n", stats.RecordsWritten, format, target.Path)
	return stats, nil
}

// stream copies t into sink, keeping t's columns only.
func (d *Driver) stream(ctx context.Context, t *core.Table, sink core.DataSink) (pipeline.Stats, error) {
	p, err := pipeline.NewPipeline().
		From(readers.NewTableReader(t)).
		Transform(transform.Select(t.Columns...)).
		To(sink).
		Build()
	if err != nil {
		sink.Close()
		return pipeline.Stats{}, err
	}
	return p.Execute(ctx)
}

func (d *Driver) newEngine(t *core.Table) (*cleaning.Engine, error) {
	policy := cleaning.DefaultPolicy()
	policy.CenturyCutoff = d.cfg.Cleaning.CenturyCutoff
	policy.FallbackRaceTime = d.cfg.Cleaning.FallbackRaceTime
	return cleaning.New(t,
		cleaning.WithPolicy(policy),
		cleaning.WithLogger(d.logger),
		cleaning.WithOutput(d.out),
	)
}

// qualityGate checks the cleaned table: it must hold at least one row, LAPS must be integers, DATE
// dates or missing, and no column may exceed the configured null rate. An empty table never reaches
// the load stage, so a replace-mode load cannot wipe the destination.
func (d *Driver) qualityGate() *validators.DataQualityValidator {
	opts := []validators.DataQualityOption{
		validators.WithFieldValidator(cleaning.ColumnLaps, validators.FieldValidator{DataType: validators.FieldTypeInt}),
		validators.WithFieldValidator(cleaning.ColumnDate, validators.FieldValidator{DataType: validators.FieldTypeDate, AllowNulls: true}),
	}
	if d.cfg.Cleaning.MaxNullRate > 0 {
		opts = append(opts, validators.WithMaxNullRate(d.cfg.Cleaning.MaxNullRate))
	}
	return validators.NewDataQualityValidator(1, cleaning.DefaultPolicy().RequiredColumns, opts...)
}

func (d *Driver) s3Options() []readers.S3Option {
	s3cfg := d.cfg.S3
	var opts []readers.S3Option
	if s3cfg.Region != "" {
		opts = append(opts, readers.WithS3Region(s3cfg.Region))
	}
	if s3cfg.Profile != "" {
		opts = append(opts, readers.WithS3Profile(s3cfg.Profile))
	}
	if s3cfg.Endpoint != "" {
		opts = append(opts, readers.WithS3Endpoint(s3cfg.Endpoint))
	}
	if s3cfg.PathStyle {
		opts = append(opts, readers.WithS3PathStyle(true))
	}
	return opts
}
