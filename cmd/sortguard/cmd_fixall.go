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
)

// runFixAll fixes every non-excluded file under the given directory.
func runFixAll(cmd *cobra.Command, args []string) error {
	start := time.Now()

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	svc, err := newService()
	if err != nil {
		OutputError(jsonOutput, "fix-all failed", err)
		return &exitError{code: CLIExitError}
	}

	results, err := svc.FixWorkspace(cmd.Context(), root)
	if err != nil {
		OutputError(jsonOutput, fmt.Sprintf("fixing %s", root), err)
		return &exitError{code: CLIExitError}
	}

	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
			if !quiet && !jsonOutput {
				fmt.Printf("fixed %s\n", r.Path)
			}
		}
	}
	if !quiet && !jsonOutput {
		fmt.Printf("%d of %d files changed\n", changed, len(results))
	}

	return OutputResult("fix-all", start, results, false)
}
