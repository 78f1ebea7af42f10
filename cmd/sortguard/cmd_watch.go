// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// runWatch lints files under the directory as they change, until
// interrupted.
func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	svc, err := newService()
	if err != nil {
		OutputError(jsonOutput, "watch failed", err)
		return &exitError{code: CLIExitError}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	watcher, err := svc.Watch(ctx, root)
	if err != nil {
		OutputError(jsonOutput, fmt.Sprintf("watching %s", root), err)
		return &exitError{code: CLIExitError}
	}
	defer watcher.Stop()

	if !quiet {
		fmt.Printf("watching %s (Ctrl+C to stop)\n", root)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	return nil
}
