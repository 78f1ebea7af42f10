// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/sortguard/sortguard/services/sorter"
)

// Exit codes for CLI commands.
const (
	CLIExitSuccess  = 0 // Operation completed, nothing out of order
	CLIExitFindings = 1 // Operation completed with findings
	CLIExitError    = 2 // Operation failed
)

// exitError carries a non-zero exit code through cobra's RunE without
// printing a second error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// CommandResult wraps command output with metadata for JSON mode.
type CommandResult struct {
	Command    string    `json:"command"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Data       any       `json:"data,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// OutputJSON writes structured data as indented JSON to stdout.
func OutputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// OutputError writes an error in the configured format.
func OutputError(jsonMode bool, msg string, err error) {
	if jsonMode {
		_ = OutputJSON(CommandResult{
			Timestamp: time.Now(),
			Success:   false,
			Error:     fmt.Sprintf("%s: %v", msg, err),
		})
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}

// OutputResult reports a completed command and returns its exit code.
//
// # Inputs
//
//   - cmd: Command name for JSON metadata
//   - start: Start time for duration calculation
//   - data: The payload to print
//   - hasFindings: Whether the operation found issues (for exit code)
//
// # Outputs
//
//   - error: nil for exit 0, *exitError otherwise
func OutputResult(cmd string, start time.Time, data any, hasFindings bool) error {
	if !quiet && jsonOutput {
		if err := OutputJSON(CommandResult{
			Command:    cmd,
			Timestamp:  time.Now(),
			DurationMs: time.Since(start).Milliseconds(),
			Success:    true,
			Data:       data,
		}); err != nil {
			return &exitError{code: CLIExitError}
		}
	}
	if hasFindings {
		return &exitError{code: CLIExitFindings}
	}
	return nil
}

// printDiagnostics writes human-readable findings for one file.
func printDiagnostics(path string, diags []sorter.Diagnostic) {
	if quiet || jsonOutput {
		return
	}
	for _, d := range diags {
		// Report the editor range as the one-based inclusive lines a
		// human sees in their editor gutter.
		fmt.Printf("%s:%d-%d: %s%s%s\n",
			path, d.Range.Start+1, d.Range.End,
			colorYellow(), d.Message, colorReset(),
		)
	}
}

// stdout color helpers, disabled when stdout is not a terminal.

func colorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorYellow() string {
	if colorEnabled() {
		return "\033[33m"
	}
	return ""
}

func colorReset() string {
	if colorEnabled() {
		return "\033[0m"
	}
	return ""
}
