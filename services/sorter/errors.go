// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"errors"
	"fmt"
)

// Sentinel errors for the sorter package.
var (
	// ErrSpawn indicates the binary could not be started at all
	// (missing file, permission denied, OS-level failure).
	ErrSpawn = errors.New("sorter binary could not be started")

	// ErrProtocol indicates the binary exited with a code other than 0
	// or 1, signaling an internal fault.
	ErrProtocol = errors.New("sorter binary reported an internal fault")

	// ErrParse indicates exit code 1 with stdout that failed JSON or
	// schema validation.
	ErrParse = errors.New("failed to parse sorter output")

	// ErrNoFix indicates the chosen finding carried zero usable
	// replacements. Multiple candidates are resolved by taking the
	// first; only zero is an error.
	ErrNoFix = errors.New("no fixes available")

	// ErrTimeout indicates the binary exceeded its configured timeout.
	ErrTimeout = errors.New("sorter binary timed out")

	// ErrCircuitOpen indicates the breaker has disabled the integration;
	// calls short-circuit without attempting the process at all.
	ErrCircuitOpen = errors.New("sorter disabled after repeated failures")

	// ErrInvalidInput indicates invalid input to a sorter function.
	ErrInvalidInput = errors.New("invalid input")
)

// SorterError wraps a failure with context about the invocation.
//
// Thread Safety: Immutable after creation.
type SorterError struct {
	// Binary is the path of the binary that was invoked.
	Binary string

	// Mode is the operating mode of the failed call.
	Mode Mode

	// Err is the underlying error.
	Err error

	// Output contains any stderr output from the binary.
	Output string
}

// Error implements the error interface.
func (e *SorterError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s (%s): %v: %s", e.Binary, e.Mode, e.Err, e.Output)
	}
	return fmt.Sprintf("%s (%s): %v", e.Binary, e.Mode, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SorterError) Unwrap() error {
	return e.Err
}

// NewSorterError creates an error with invocation context.
func NewSorterError(binary string, mode Mode, err error) *SorterError {
	return &SorterError{
		Binary: binary,
		Mode:   mode,
		Err:    err,
	}
}

// WithOutput returns a copy of the error with stderr output attached.
func (e *SorterError) WithOutput(output string) *SorterError {
	return &SorterError{
		Binary: e.Binary,
		Mode:   e.Mode,
		Err:    e.Err,
		Output: output,
	}
}
