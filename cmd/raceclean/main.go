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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aaronlmathis/raceclean/config"
	"github.com/aaronlmathis/raceclean/etl"
	"github.com/aaronlmathis/raceclean/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	input      string
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "raceclean",
		Short:         "Clean Formula 1 race results and load them into a database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&flags.input, "input", "", "input CSV path or s3://bucket/key URI")

	root.AddCommand(
		newRunCmd(flags),
		newReportCmd(flags),
		newPreviewCmd(flags),
	)
	return root
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, clean, export and load the race results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, func(cfg *config.Config) {
				if export != "" {
					cfg.Export.Path = export
				}
			})
			if err != nil {
				return err
			}
			driver, logger, err := newDriver(cmd, cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			res, err := driver.Run(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("run complete",
				zap.String("run_id", res.RunID),
				zap.Int("stages", len(res.Stages)),
				zap.Int("values_cleaned", res.Summary.ValuesCleaned),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&export, "export", "", "write the cleaned data as CSV to this path")
	return cmd
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the missing-data report for the input without cleaning it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, nil)
			if err != nil {
				return err
			}
			driver, logger, err := newDriver(cmd, cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			_, err = driver.Report(cmd.Context())
			return err
		},
	}
}

func newPreviewCmd(flags *globalFlags) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the shape, column overview and first rows of the input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, func(cfg *config.Config) {
				if cmd.Flags().Changed("rows") {
					cfg.Input.PreviewRows = rows
				}
			})
			if err != nil {
				return err
			}
			driver, logger, err := newDriver(cmd, cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			table, err := driver.Extract(cmd.Context())
			if err != nil {
				return err
			}
			return driver.Preview(table, cfg.Input.PreviewRows)
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", 15, "number of rows to show")
	return cmd
}

// loadConfig reads the configuration, applies the command line overrides and validates the result again.
func loadConfig(flags *globalFlags, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.input != "" {
		cfg.Input.Path = flags.input
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func newDriver(cmd *cobra.Command, cfg *config.Config) (*etl.Driver, *zap.Logger, error) {
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	driver, err := etl.New(cfg, etl.WithLogger(logger), etl.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return nil, nil, err
	}
	return driver, logger, nil
}
