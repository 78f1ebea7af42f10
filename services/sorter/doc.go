// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sorter integrates the external keep-sorted binary with editor
// tooling: diagnostics, block fixes, and background linting.
//
// The package shells out to a pre-built sorting/linting binary, feeds it
// document text on stdin, and translates its JSON findings into editor
// diagnostics and workspace edits. It owns the full protocol between the
// binary and the editor-facing surface:
//
//   - One-based inclusive line ranges (binary) vs zero-based exclusive
//     ranges (editor)
//   - Exit code 0 = clean, 1 = findings, anything else = binary fault
//   - First-finding/first-fix/first-replacement disambiguation
//   - A consecutive-failure circuit breaker that disables the integration
//     after repeated faults
//
// # Architecture
//
//	Editor event (save/change/command)
//	    │
//	    ▼
//	Client.Lint / Client.Fix
//	    │
//	    ▼
//	ProcessInvoker ── spawns binary, streams stdin, collects stdout/stderr
//	    │
//	    ▼
//	ParseFindings / ToDiagnostics / SelectReplacement
//	    │
//	    ▼
//	DiagnosticStore (per-URI) / EditPlanner (atomic edits)
//	    │
//	    ▼
//	Breaker observes success/failure of the whole operation
//
// # Binary Protocol
//
// The binary is invoked as:
//
//	keep-sorted --mode lint -              # whole document, findings JSON
//	keep-sorted --mode fix -               # whole document, corrected text
//	keep-sorted --mode lint --lines 3:7 -  # block-scoped, one-based inclusive
//
// A ranged fix is a range-scoped lint: the replacement is extracted from
// the finding's fix rather than from a separate fix-mode invocation.
//
// Document text is written to stdin in full. Exit codes 0 and 1 are both
// successful protocol outcomes (clean vs findings); any other code is the
// binary signaling an internal fault, with a diagnostic on stderr.
//
// # Usage
//
//	svc, err := sorter.NewService(sorter.DefaultServiceConfig())
//	if err != nil {
//	    return err
//	}
//
//	diags, err := svc.LintFile(ctx, "path/to/file.ts")
//	if err != nil {
//	    // Lint could not run (distinct from "ran and found nothing").
//	}
//
//	plan, err := svc.PlanEdit(ctx, doc, nil) // nil range = whole file
//	if plan == nil {
//	    // Nothing to fix.
//	}
//
// # Thread Safety
//
// All exported types are safe for concurrent use unless noted otherwise.
// Operations on distinct documents may run concurrently; the Breaker is a
// single shared instance observing all of them.
package sorter
