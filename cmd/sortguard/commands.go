// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sortguard/sortguard/cmd/sortguard/config"
	"github.com/sortguard/sortguard/pkg/logging"
	"github.com/sortguard/sortguard/services/sorter"
)

// --- Global Command Variables ---
var (
	jsonOutput bool
	quiet      bool
	logLevel   string
	binaryPath string
	linesSpec  string
	servePort  int

	appLogger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "sortguard",
		Short: "Keep list-like blocks in your files sorted",
		Long: `Sortguard lints and fixes the sort order of annotated blocks in
text files, using the bundled keep-sorted binary. Findings map to
line-precise diagnostics; fixes rewrite only what is out of order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}

			level := logLevel
			if level == "" {
				level = config.Global.Logging.Level
			}
			appLogger = logging.New(logging.Config{
				Level:   logging.ParseLevel(level),
				LogDir:  config.Global.Logging.Dir,
				Service: "sortguard",
				// Structured JSON when stderr is piped, text for humans.
				JSON:  config.Global.Logging.JSON || !isatty.IsTerminal(os.Stderr.Fd()),
				Quiet: quiet,
			})
			slog.SetDefault(appLogger.Slog())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appLogger != nil {
				appLogger.Close()
			}
		},
	}

	lintCmd = &cobra.Command{
		Use:   "lint <file>...",
		Short: "Report out-of-order blocks without changing anything",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLint, // Defined in cmd_lint.go
	}

	fixCmd = &cobra.Command{
		Use:   "fix <file>",
		Short: "Rewrite a file (or a block of it) into sorted order",
		Args:  cobra.ExactArgs(1),
		RunE:  runFix, // Defined in cmd_fix.go
	}

	fixAllCmd = &cobra.Command{
		Use:   "fix-all [dir]",
		Short: "Fix every file under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFixAll, // Defined in cmd_fixall.go
	}

	watchCmd = &cobra.Command{
		Use:   "watch [dir]",
		Short: "Lint files as they change, debounced per document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWatch, // Defined in cmd_watch.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Expose lint and fix over HTTP",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run:   runVersion, // Defined in cmd_version.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress output, exit code only")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&binaryPath, "binary", "", "Path to the keep-sorted binary (overrides config)")

	fixCmd.Flags().StringVar(&linesSpec, "lines", "", "Restrict the fix to a one-based inclusive line range, e.g. 10:14")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to the configured port)")

	rootCmd.AddCommand(lintCmd, fixCmd, fixAllCmd, watchCmd, serveCmd, versionCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			// The command already reported its result; the error only
			// carries the exit code past cobra.
			return exitErr.code
		}
		OutputError(jsonOutput, "command failed", err)
		return CLIExitError
	}
	return CLIExitSuccess
}

// newService builds the sorter service from config plus CLI overrides.
func newService() (*sorter.Service, error) {
	cfg := config.Global.ServiceConfig()
	if binaryPath != "" {
		cfg.BinaryPath = binaryPath
	}
	svc, err := sorter.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("building sorter service: %w", err)
	}
	return svc, nil
}
