// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

// =============================================================================
// FINDING PARSER
// =============================================================================

// ParseFindings decodes the binary's lint-mode stdout.
//
// Description:
//
//	Exit code 0 means clean: stdout is empty and nil findings are
//	returned. Exit code 1 means findings: stdout must be a JSON array of
//	finding objects matching the schema; anything else is ErrParse.
//	Never proceeds with partially-typed data.
//
// Inputs:
//
//	stdout - Raw standard output from a lint-mode invocation
//	exitCode - The process exit code (0 or 1)
//
// Outputs:
//
//	[]Finding - Parsed findings, nil when clean
//	error - ErrParse (wrapped) on JSON or schema violations
func ParseFindings(stdout string, exitCode int) ([]Finding, error) {
	if exitCode == 0 {
		return nil, nil
	}

	var findings []Finding
	if err := json.Unmarshal([]byte(stdout), &findings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	for i, f := range findings {
		if !f.Lines.Valid() {
			return nil, fmt.Errorf("%w: finding %d has invalid line span %d:%d",
				ErrParse, i, f.Lines.Start, f.Lines.End)
		}
		for j, fix := range f.Fixes {
			for k, rep := range fix.Replacements {
				if !rep.Lines.Valid() {
					return nil, fmt.Errorf("%w: finding %d fix %d replacement %d has invalid line span %d:%d",
						ErrParse, i, j, k, rep.Lines.Start, rep.Lines.End)
				}
			}
		}
	}

	return findings, nil
}

// =============================================================================
// LINE-NUMBERING TRANSLATION
// =============================================================================

// ToDiagnostics converts findings into editor diagnostics.
//
// Description:
//
//	Pure function with no failure mode; schema violations were caught at
//	parse time, so individual findings are mapped as-is.
//
//	A finding's one-based start becomes the zero-based diagnostic start
//	(start-1). The one-based inclusive end equals the zero-based
//	exclusive end numerically, so only the start needs adjustment. A
//	single-line finding (start == end) yields a range spanning exactly
//	one line.
//
// Inputs:
//
//	doc - The document the findings belong to (identity only)
//	findings - Parsed findings
//
// Outputs:
//
//	[]Diagnostic - One diagnostic per finding, in input order
func ToDiagnostics(doc Document, findings []Finding) []Diagnostic {
	if len(findings) == 0 {
		return []Diagnostic{}
	}

	diags := make([]Diagnostic, 0, len(findings))
	for _, f := range findings {
		diags = append(diags, Diagnostic{
			Range: Range{
				Start: f.Lines.Start - 1,
				End:   f.Lines.End,
			},
			Message:  f.Message,
			Source:   DiagnosticSource,
			Severity: SeverityWarning,
		})
	}
	return diags
}

// LinesArg converts an editor range into the binary's --lines argument.
//
// Description:
//
//	The zero-based start becomes one-based (start+1); the zero-based
//	exclusive end equals the one-based inclusive end directly. When the
//	computed end would precede the start (a zero-length or inverted
//	range), the end is normalized to equal the start: an invalid range
//	is never passed to the binary.
//
// Inputs:
//
//	rng - Zero-based, end-exclusive editor range
//
// Outputs:
//
//	string - Space-free "<start>:<end>" with one-based inclusive bounds
func LinesArg(rng Range) string {
	start := rng.Start + 1
	end := rng.End
	if end < start {
		end = start
	}
	return strconv.Itoa(start) + ":" + strconv.Itoa(end)
}

// =============================================================================
// FIX SELECTION
// =============================================================================

// SelectReplacement resolves a set of findings to a single replacement.
//
// Description:
//
//	Applies the first-by-list-order disambiguation policy: more than one
//	finding, fix, or replacement is logged as a warning and the first is
//	taken. Zero fixes or zero replacements on the chosen path is ErrNoFix,
//	surfaced to the caller rather than silently ignored.
//
// Inputs:
//
//	findings - Findings from a single fix-scoped lint. Must be non-empty.
//
// Outputs:
//
//	Replacement - The chosen replacement
//	error - ErrNoFix when the chosen finding has no usable replacement
func SelectReplacement(findings []Finding) (Replacement, error) {
	if len(findings) == 0 {
		return Replacement{}, fmt.Errorf("%w: no findings to fix", ErrNoFix)
	}
	if len(findings) > 1 {
		slog.Warn("Multiple findings for one operation, using the first",
			slog.Int("count", len(findings)),
		)
	}
	finding := findings[0]

	if len(finding.Fixes) == 0 {
		return Replacement{}, fmt.Errorf("%w: finding %q has no fixes", ErrNoFix, finding.Message)
	}
	if len(finding.Fixes) > 1 {
		slog.Warn("Multiple fixes for one finding, using the first",
			slog.Int("count", len(finding.Fixes)),
		)
	}
	fix := finding.Fixes[0]

	if len(fix.Replacements) == 0 {
		return Replacement{}, fmt.Errorf("%w: fix has no replacements", ErrNoFix)
	}
	if len(fix.Replacements) > 1 {
		slog.Warn("Multiple replacements in one fix, using the first",
			slog.Int("count", len(fix.Replacements)),
		)
	}

	return fix.Replacements[0], nil
}
