// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sortguard/sortguard/services/sorter"
)

// lintFileResult is the per-file payload for JSON output.
type lintFileResult struct {
	Path        string              `json:"path"`
	Diagnostics []sorter.Diagnostic `json:"diagnostics"`
}

// runLint lints each file argument and reports findings.
//
// Exit codes: 0 when every file is clean, 1 when any file has findings,
// 2 when a lint could not run.
func runLint(cmd *cobra.Command, args []string) error {
	start := time.Now()

	svc, err := newService()
	if err != nil {
		OutputError(jsonOutput, "lint failed", err)
		return &exitError{code: CLIExitError}
	}

	var results []lintFileResult
	hasFindings := false
	for _, path := range args {
		diags, err := svc.LintFile(cmd.Context(), path)
		if err != nil {
			OutputError(jsonOutput, fmt.Sprintf("linting %s", path), err)
			return &exitError{code: CLIExitError}
		}
		if len(diags) > 0 {
			hasFindings = true
			printDiagnostics(path, diags)
		}
		results = append(results, lintFileResult{Path: path, Diagnostics: diags})
	}

	return OutputResult("lint", start, results, hasFindings)
}
