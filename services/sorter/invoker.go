// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// =============================================================================
// PROCESS INVOKER
// =============================================================================

// Invoker runs the external binary with the given arguments and stdin text.
//
// Tests substitute a stub; production code uses ProcessInvoker.
type Invoker interface {
	Run(ctx context.Context, mode Mode, args []string, stdin string) (ExecutionResult, error)
}

// ProcessInvoker spawns the external sorter binary.
//
// Description:
//
//	Starts the binary with three independent streams, writes the document
//	text to stdin and closes it, accumulates stdout/stderr without a size
//	cap (documents are bounded in memory), and measures wall time.
//
// Thread Safety: Safe for concurrent use; each Run spawns its own process.
type ProcessInvoker struct {
	binaryPath string
	timeout    time.Duration
}

// InvokerOption configures the ProcessInvoker.
type InvokerOption func(*ProcessInvoker)

// WithTimeout sets the per-invocation timeout. Zero disables the limit,
// in which case a hung binary hangs the corresponding call.
func WithTimeout(d time.Duration) InvokerOption {
	return func(p *ProcessInvoker) {
		p.timeout = d
	}
}

// NewProcessInvoker creates an invoker for the given binary path.
//
// Inputs:
//
//	binaryPath - Resolved path of the binary (see ResolveBinaryPath)
//	opts - Optional configuration
//
// Outputs:
//
//	*ProcessInvoker - The configured invoker
func NewProcessInvoker(binaryPath string, opts ...InvokerOption) *ProcessInvoker {
	p := &ProcessInvoker{
		binaryPath: binaryPath,
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BinaryPath returns the resolved binary path.
func (p *ProcessInvoker) BinaryPath() string {
	return p.binaryPath
}

// Run executes the binary once.
//
// Description:
//
//	Spawns the binary, feeds stdin, and waits for exit. Exit codes 0 and
//	1 are successful protocol outcomes (clean vs findings) and are
//	returned in the result, not as errors. Spawn failures surface as
//	ErrSpawn, deadline overruns as ErrTimeout; both are fatal to the
//	single call but not to the process.
//
// Inputs:
//
//	ctx - Context for cancellation; combined with the configured timeout
//	mode - Operating mode, used only for error context and logging
//	args - Full argument list, including the trailing "-"
//	stdin - Document text fed to the binary
//
// Outputs:
//
//	ExecutionResult - Exit code, stdout, stderr, duration
//	error - Non-nil only when the process could not run to completion
//
// Thread Safety: Safe for concurrent use.
func (p *ProcessInvoker) Run(ctx context.Context, mode Mode, args []string, stdin string) (ExecutionResult, error) {
	if ctx == nil {
		return ExecutionResult{}, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	cmdCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, p.binaryPath, args...)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if cmdCtx.Err() == context.DeadlineExceeded {
		return ExecutionResult{}, NewSorterError(p.binaryPath, mode, ErrTimeout).
			WithOutput(stderr.String())
	}
	if ctx.Err() != nil {
		return ExecutionResult{}, ctx.Err()
	}

	result := ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// Process never started: missing binary, not executable.
			return ExecutionResult{}, NewSorterError(p.binaryPath, mode,
				fmt.Errorf("%w: %v", ErrSpawn, err))
		}
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode < 0 {
			// Killed by signal; the OS reports no exit code.
			result.ExitCode = 1
		}
	}

	slog.Debug("Sorter binary finished",
		slog.String("binary", p.binaryPath),
		slog.String("args", strings.Join(args, " ")),
		slog.Int("exit_code", result.ExitCode),
		slog.Duration("duration", duration),
	)
	if result.ExitCode != 0 && result.ExitCode != 1 {
		slog.Error("Sorter binary internal fault",
			slog.Int("exit_code", result.ExitCode),
			slog.String("stderr", result.Stderr),
		)
	}

	return result, nil
}
