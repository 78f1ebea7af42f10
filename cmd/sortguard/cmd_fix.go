// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sortguard/sortguard/services/sorter"
)

// fixResult is the payload for JSON output.
type fixResult struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
}

// runFix fixes one file in place, optionally restricted to a line range.
func runFix(cmd *cobra.Command, args []string) error {
	start := time.Now()
	path := args[0]

	rng, err := parseLinesSpec(linesSpec)
	if err != nil {
		OutputError(jsonOutput, "invalid --lines", err)
		return &exitError{code: CLIExitError}
	}

	svc, err := newService()
	if err != nil {
		OutputError(jsonOutput, "fix failed", err)
		return &exitError{code: CLIExitError}
	}

	changed, err := svc.FixFile(cmd.Context(), path, rng)
	if err != nil {
		OutputError(jsonOutput, fmt.Sprintf("fixing %s", path), err)
		return &exitError{code: CLIExitError}
	}

	if changed && !quiet && !jsonOutput {
		fmt.Printf("fixed %s\n", path)
	}
	return OutputResult("fix", start, fixResult{Path: path, Changed: changed}, false)
}

// parseLinesSpec converts a one-based inclusive "a:b" flag value into
// the editor's zero-based, end-exclusive range. Empty means whole file.
func parseLinesSpec(spec string) (*sorter.Range, error) {
	if spec == "" {
		return nil, nil
	}

	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected start:end, got %q", spec)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("bad start line %q", parts[0])
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("bad end line %q", parts[1])
	}
	if a < 1 || b < a {
		return nil, fmt.Errorf("lines must satisfy 1 <= start <= end, got %q", spec)
	}

	// One-based inclusive end equals zero-based exclusive end.
	return &sorter.Range{Start: a - 1, End: b}, nil
}
