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

// Package config loads RaceClean settings from a YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aaronlmathis/raceclean/types"
)

// Configuration validation errors.
var (
	ErrMissingInput         = errors.New("input.path is required")
	ErrInvalidPreviewRows   = errors.New("input.preview_rows must be non-negative")
	ErrInvalidDelimiter     = errors.New("input.delimiter must be a single character")
	ErrInvalidCenturyCutoff = errors.New("cleaning.century_cutoff must be between 1900 and 2099")
	ErrInvalidMaxNullRate   = errors.New("cleaning.max_null_rate must be between 0 and 1")
	ErrInvalidSinkDriver    = errors.New("sink.driver must be one of: postgres, sqlite, none")
	ErrMissingDSN           = errors.New("sink.dsn is required")
	ErrMissingTable         = errors.New("sink.table is required")
	ErrInvalidTableMode     = errors.New("sink.mode must be one of: replace, append, truncate")
	ErrInvalidBatchSize     = errors.New("sink.batch_size must be at least 1")
	ErrMissingExportPath    = errors.New("export.targets[].path is required")
	ErrInvalidExportFormat  = errors.New("export.targets[].format must be one of: csv, json, parquet")
)

// Sink drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNone     = "none"
)

// Config is the complete RaceClean configuration.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Cleaning CleaningConfig `yaml:"cleaning"`
	Sink     SinkConfig     `yaml:"sink"`
	Export   ExportConfig   `yaml:"export"`
	Logging  LoggingConfig  `yaml:"logging"`
	S3       S3Config       `yaml:"s3"`
}

// InputConfig locates the race results CSV.
type InputConfig struct {
	// Path is a local file or an s3://bucket/key URI.
	Path        string `yaml:"path"`
	PreviewRows int    `yaml:"preview_rows"`
	Delimiter   string `yaml:"delimiter"`
}

// CleaningConfig tunes the cleaning policy and the post-clean quality gate.
type CleaningConfig struct {
	CenturyCutoff    int    `yaml:"century_cutoff"`
	FallbackRaceTime string `yaml:"fallback_race_time"`
	// MaxNullRate fails the run when a column of the cleaned table has more missing values. 0 disables it.
	MaxNullRate float64 `yaml:"max_null_rate"`
}

// SinkConfig describes the relational store.
type SinkConfig struct {
	Driver    string `yaml:"driver"`
	DSN       string `yaml:"dsn"`
	Table     string `yaml:"table"`
	Mode      string `yaml:"mode"`
	BatchSize int    `yaml:"batch_size"`
	// AuditTable receives the substitution trail when set.
	AuditTable string `yaml:"audit_table"`
}

// ExportConfig lists optional file exports of the cleaned table.
type ExportConfig struct {
	// Path is the plain CSV export written by the cleaning engine.
	Path    string         `yaml:"path"`
	Targets []ExportTarget `yaml:"targets"`
}

// ExportTarget is an extra export to a local path or an S3 object.
type ExportTarget struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// S3Config configures S3 access for s3:// inputs and exports.
type S3Config struct {
	Region    string `yaml:"region"`
	Profile   string `yaml:"profile"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:        "Files/F1Wins.csv",
			PreviewRows: 15,
			Delimiter:   ",",
		},
		Cleaning: CleaningConfig{
			CenturyCutoff:    2030,
			FallbackRaceTime: "1:32:15.000",
		},
		Sink: SinkConfig{
			Driver:    DriverSQLite,
			DSN:       "Files/etl_data.db",
			Table:     "ride_bookings_clean",
			Mode:      "replace",
			BatchSize: 500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (skipped when path is empty),
// then the .env file and environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files (default ".env") without overriding variables already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from RACECLEAN_* and a few conventional variables.
func (c *Config) ApplyEnv() {
	setString(&c.Input.Path, "RACECLEAN_INPUT")
	setInt(&c.Input.PreviewRows, "RACECLEAN_PREVIEW_ROWS")
	setInt(&c.Cleaning.CenturyCutoff, "RACECLEAN_CENTURY_CUTOFF")
	setString(&c.Sink.Driver, "RACECLEAN_SINK_DRIVER")
	setString(&c.Sink.DSN, "RACECLEAN_SINK_DSN")
	setString(&c.Sink.Table, "RACECLEAN_SINK_TABLE")
	setString(&c.Sink.Mode, "RACECLEAN_SINK_MODE")
	setString(&c.Sink.AuditTable, "RACECLEAN_AUDIT_TABLE")
	setString(&c.Export.Path, "RACECLEAN_EXPORT_PATH")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.S3.Region, "AWS_REGION")
	setString(&c.S3.Profile, "AWS_PROFILE")
	setString(&c.S3.Endpoint, "RACECLEAN_S3_ENDPOINT")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input.Path) == "" {
		return ErrMissingInput
	}
	if c.Input.PreviewRows < 0 {
		return ErrInvalidPreviewRows
	}
	if len([]rune(c.Input.Delimiter)) > 1 {
		return ErrInvalidDelimiter
	}

	if c.Cleaning.CenturyCutoff < 1900 || c.Cleaning.CenturyCutoff > 2099 {
		return ErrInvalidCenturyCutoff
	}
	if c.Cleaning.MaxNullRate < 0 || c.Cleaning.MaxNullRate > 1 {
		return ErrInvalidMaxNullRate
	}

	switch c.Sink.Driver {
	case DriverPostgres, DriverSQLite:
		if c.Sink.DSN == "" {
			return ErrMissingDSN
		}
		if c.Sink.Table == "" {
			return ErrMissingTable
		}
		switch strings.ToLower(c.Sink.Mode) {
		case "", "replace", "append", "truncate":
		default:
			return ErrInvalidTableMode
		}
		if c.Sink.BatchSize < 1 {
			return ErrInvalidBatchSize
		}
	case DriverNone:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidSinkDriver, c.Sink.Driver)
	}

	for i, target := range c.Export.Targets {
		if target.Path == "" {
			return fmt.Errorf("%w: targets[%d]", ErrMissingExportPath, i)
		}
		if _, err := c.Export.TargetFormat(i); err != nil {
			return fmt.Errorf("%w: targets[%d]", ErrInvalidExportFormat, i)
		}
	}
	return nil
}

// TargetFormat returns the format of export target i, from its format field or its path extension.
func (e ExportConfig) TargetFormat(i int) (types.OutputFormat, error) {
	target := e.Targets[i]
	if target.Format == "" {
		return types.FormatFromPath(target.Path), nil
	}
	format, err := types.ParseOutputFormat(target.Format)
	if err != nil {
		return 0, err
	}
	switch format {
	case types.FormatCSV, types.FormatJSON, types.FormatParquet:
		return format, nil
	default:
		return 0, fmt.Errorf("format %s is not a file format", format)
	}
}

// Comma returns the input delimiter as a rune, defaulting to ','.
func (i InputConfig) Comma() rune {
	if r := []rune(i.Delimiter); len(r) == 1 {
		return r[0]
	}
	return ','
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
