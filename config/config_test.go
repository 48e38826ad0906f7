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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/raceclean/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Files/F1Wins.csv", cfg.Input.Path)
	assert.Equal(t, "ride_bookings_clean", cfg.Sink.Table)
	assert.Equal(t, 2030, cfg.Cleaning.CenturyCutoff)
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := writeFile(t, "raceclean.yaml", `
input:
  path: data/wins.csv
  delimiter: ";"
sink:
  driver: postgres
  dsn: postgres://etl@localhost/f1?sslmode=disable
  table: race_results
export:
  path: out/clean.csv
  targets:
    - path: s3://race-data/clean/wins.parquet
    - path: out/wins.jsonl
      format: json
`)
	t.Setenv("RACECLEAN_INPUT", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/wins.csv", cfg.Input.Path)
	assert.Equal(t, ';', cfg.Input.Comma())
	assert.Equal(t, 15, cfg.Input.PreviewRows, "unset keys keep defaults")
	assert.Equal(t, DriverPostgres, cfg.Sink.Driver)
	assert.Equal(t, "race_results", cfg.Sink.Table)
	assert.Equal(t, 500, cfg.Sink.BatchSize)

	format, err := cfg.Export.TargetFormat(0)
	require.NoError(t, err)
	assert.Equal(t, types.FormatParquet, format)
	format, err = cfg.Export.TargetFormat(1)
	require.NoError(t, err)
	assert.Equal(t, types.FormatJSON, format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RACECLEAN_INPUT", "s3://race-data/raw/F1Wins.csv")
	t.Setenv("RACECLEAN_SINK_DRIVER", "none")
	t.Setenv("RACECLEAN_CENTURY_CUTOFF", "2025")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3://race-data/raw/F1Wins.csv", cfg.Input.Path)
	assert.Equal(t, DriverNone, cfg.Sink.Driver)
	assert.Equal(t, 2025, cfg.Cleaning.CenturyCutoff)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	envFile := writeFile(t, ".env", "RACECLEAN_SINK_TABLE=from_dotenv\nRACECLEAN_SINK_DSN=from_dotenv.db\n")
	t.Setenv("RACECLEAN_SINK_TABLE", "from_env")
	t.Setenv("RACECLEAN_SINK_DSN", "")
	os.Unsetenv("RACECLEAN_SINK_DSN")

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "from_env", os.Getenv("RACECLEAN_SINK_TABLE"))
	assert.Equal(t, "from_dotenv.db", os.Getenv("RACECLEAN_SINK_DSN"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "input: [unclosed")
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing input", func(c *Config) { c.Input.Path = " " }, ErrMissingInput},
		{"negative preview", func(c *Config) { c.Input.PreviewRows = -1 }, ErrInvalidPreviewRows},
		{"long delimiter", func(c *Config) { c.Input.Delimiter = "||" }, ErrInvalidDelimiter},
		{"cutoff", func(c *Config) { c.Cleaning.CenturyCutoff = 30 }, ErrInvalidCenturyCutoff},
		{"null rate", func(c *Config) { c.Cleaning.MaxNullRate = 1.5 }, ErrInvalidMaxNullRate},
		{"driver", func(c *Config) { c.Sink.Driver = "mysql" }, ErrInvalidSinkDriver},
		{"dsn", func(c *Config) { c.Sink.DSN = "" }, ErrMissingDSN},
		{"table", func(c *Config) { c.Sink.Table = "" }, ErrMissingTable},
		{"mode", func(c *Config) { c.Sink.Mode = "upsert" }, ErrInvalidTableMode},
		{"batch", func(c *Config) { c.Sink.BatchSize = 0 }, ErrInvalidBatchSize},
		{"export path", func(c *Config) { c.Export.Targets = []ExportTarget{{Format: "csv"}} }, ErrMissingExportPath},
		{"export format", func(c *Config) { c.Export.Targets = []ExportTarget{{Path: "x", Format: "sqlite"}} }, ErrInvalidExportFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate_NoneDriverSkipsSinkChecks(t *testing.T) {
	cfg := Default()
	cfg.Sink = SinkConfig{Driver: DriverNone}
	assert.NoError(t, cfg.Validate())
}
