// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"fmt"
	"time"
)

// DiagnosticSource tags every diagnostic produced by this package.
const DiagnosticSource = "sortguard"

// =============================================================================
// BINARY-SIDE TYPES (one-based, inclusive)
// =============================================================================

// LineSpan is a one-based, inclusive line range in the binary's numbering
// of the input it was given. The input may itself be a sub-range of the
// full document.
type LineSpan struct {
	// Start is the first line of the span, one-based.
	Start int `json:"start"`

	// End is the last line of the span, one-based and inclusive.
	// Invariant: End >= Start.
	End int `json:"end"`
}

// Valid reports whether the span satisfies its invariants.
func (s LineSpan) Valid() bool {
	return s.Start >= 1 && s.End >= s.Start
}

// Finding is one issue reported by the binary for a contiguous block.
//
// Thread Safety: Immutable after parse.
type Finding struct {
	// Path is the file path as reported by the binary. Informational;
	// the caller already knows which document it sent.
	Path string `json:"path"`

	// Lines is the span the finding covers.
	Lines LineSpan `json:"lines"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Fixes are candidate remediations, possibly empty.
	Fixes []Fix `json:"fixes"`
}

// Fix is one candidate remediation for a Finding.
//
// Typically a fix carries exactly one replacement; multiple fixes or
// replacements signal ambiguity that SelectReplacement resolves
// deterministically.
type Fix struct {
	Replacements []Replacement `json:"replacements"`
}

// Replacement is a concrete span-and-text substitution.
type Replacement struct {
	// Lines is the one-based inclusive span to replace.
	Lines LineSpan `json:"lines"`

	// NewContent is the full replacement text for the span,
	// newline-terminated per line.
	NewContent string `json:"new_content"`
}

// =============================================================================
// EDITOR-SIDE TYPES (zero-based, end-exclusive)
// =============================================================================

// Range is a zero-based line range with an exclusive end, the editor's
// range model.
type Range struct {
	// Start is the first line, zero-based.
	Start int `json:"start"`

	// End is one past the last line, zero-based.
	End int `json:"end"`
}

// Contains reports whether the line (zero-based) falls inside the range.
func (r Range) Contains(line int) bool {
	return line >= r.Start && line < r.End
}

// Overlaps reports whether two ranges share at least one line.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// String returns the range in start:end form.
func (r Range) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// Severity is the severity level of a diagnostic.
type Severity int

const (
	// SeverityWarning is the severity of every diagnostic this package
	// produces. Out-of-order blocks never block the editor.
	SeverityWarning Severity = iota

	// SeverityError is reserved for future protocol extensions.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is an editor-facing annotation derived from a Finding.
//
// Diagnostics are created fresh on every lint pass; the previous set for a
// document is replaced wholesale. They never persist independent of a pass.
//
// Thread Safety: Immutable after creation.
type Diagnostic struct {
	// Range is zero-based with an exclusive end line.
	Range Range `json:"range"`

	// Message is the human-readable description from the finding.
	Message string `json:"message"`

	// Source identifies this integration. Always DiagnosticSource.
	Source string `json:"source"`

	// Severity is always SeverityWarning for sorter findings.
	Severity Severity `json:"severity"`
}

// Document is the minimal view of an editor document the sorter needs:
// an identity and the full current text, exactly as held in the editor
// (not necessarily matching the on-disk file).
type Document struct {
	// URI identifies the document. File documents use the path itself.
	URI string `json:"uri"`

	// Text is the full current content.
	Text string `json:"text"`
}

// WorkspaceEdit is a single atomic text replacement the caller applies to
// a document.
type WorkspaceEdit struct {
	// URI is the document the edit applies to.
	URI string `json:"uri"`

	// Range is the zero-based, end-exclusive span being replaced.
	// For whole-file edits it covers every line of the document.
	Range Range `json:"range"`

	// NewText replaces the range in full.
	NewText string `json:"new_text"`
}

// EditPlan pairs an edit with the exact diagnostics it was computed
// against, so the caller can retire precisely those after applying it.
type EditPlan struct {
	Edit        WorkspaceEdit `json:"edit"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
}

// =============================================================================
// PROCESS TYPES
// =============================================================================

// ExecutionResult is the outcome of one binary invocation. Produced by the
// invoker, consumed by the client, never persisted.
type ExecutionResult struct {
	// ExitCode is the process exit status. Defaults to 1 when the OS
	// reports none (e.g. killed by signal).
	ExitCode int

	// Stdout is the accumulated standard output.
	Stdout string

	// Stderr is the accumulated standard error.
	Stderr string

	// Duration is how long the process ran.
	Duration time.Duration
}

// Mode selects the binary's operating mode.
type Mode string

const (
	// ModeLint reports findings as JSON without changing anything.
	ModeLint Mode = "lint"

	// ModeFix emits the corrected text of the input.
	ModeFix Mode = "fix"
)
