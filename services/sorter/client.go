// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// LINT/FIX CLIENT
// =============================================================================

// Client is the public-facing orchestrator for lint and fix operations.
//
// Description:
//
//	Composes the process invoker with the finding translator and routes
//	every operation outcome through the shared breaker. A single
//	operation moves through spawn, stream, exit, and parse with no
//	internal retry; the only fallback is the distinct whole-file fix
//	call documented on Fix.
//
// Thread Safety: Safe for concurrent use on distinct documents. Callers
// serialize operations against the same document (see Scheduler).
type Client struct {
	invoker Invoker
	breaker *Breaker
}

// NewClient creates a client around an invoker and a shared breaker.
//
// Inputs:
//
//	invoker - Process invoker (or a stub in tests). Must not be nil.
//	breaker - The shared breaker observing all operations. Must not be nil.
func NewClient(invoker Invoker, breaker *Breaker) *Client {
	return &Client{
		invoker: invoker,
		breaker: breaker,
	}
}

// Lint reports diagnostics for a whole document.
//
// Description:
//
//	Invokes the binary in lint mode over the full document text. Exit
//	code 0 yields an empty slice: the lint ran and found nothing. Exit
//	code 1 yields translated diagnostics. Any other exit code, spawn
//	failure, timeout, or parse failure is recorded by the breaker and
//	returned as an error: "lint could not run" is distinct from "ran and
//	found nothing".
//
// Inputs:
//
//	ctx - Context for cancellation and timeout
//	doc - The document to lint
//
// Outputs:
//
//	[]Diagnostic - Diagnostics in finding order, empty when clean
//	error - Non-nil when the lint could not run
//
// Thread Safety: Safe for concurrent use.
func (c *Client) Lint(ctx context.Context, doc Document) ([]Diagnostic, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	ctx, span := startOpSpan(ctx, ModeLint, doc.URI)
	defer span.End()

	opLog := slog.With(
		slog.String("op_id", uuid.NewString()),
		slog.String("uri", doc.URI),
	)

	findings, result, err := c.runLint(ctx, doc.Text, nil)
	if err != nil {
		recordOpMetrics(ctx, ModeLint, result.Duration, 0, false)
		c.breaker.RecordError(err)
		return nil, err
	}

	c.breaker.RecordSuccess()
	recordOpMetrics(ctx, ModeLint, result.Duration, len(findings), true)
	opLog.Debug("Lint completed",
		slog.Int("findings", len(findings)),
		slog.Duration("duration", result.Duration),
	)

	return ToDiagnostics(doc, findings), nil
}

// FixResult is the outcome of a fix operation that found something to do.
type FixResult struct {
	// NewText is the replacement text.
	NewText string

	// Span is the zero-based, end-exclusive range NewText replaces. Set
	// for ranged fixes from the replacement's own span, which may be
	// narrower than the range the caller asked about; nil when WholeFile
	// is true.
	Span *Range

	// WholeFile is true when NewText replaces the entire document
	// rather than the requested range. Set for unranged fixes and for
	// the whole-file fallback of a ranged fix.
	WholeFile bool
}

// Fix computes the corrected text for a document or a block of it.
//
// Description:
//
//	Unranged: invokes the binary in fix mode; exit code 0 means nothing
//	to fix (nil result, not an error), exit code 1 means stdout is the
//	full corrected text.
//
//	Ranged: invokes a range-scoped lint and extracts the single canonical
//	replacement, taking the first finding/fix/replacement with a logged
//	warning when more than one is present. The result's Span is the
//	replacement's own span, not the requested range: lines inside the
//	range but outside the block stay untouched. A ranged fix that finds
//	nothing falls back to ONE whole-file fix attempt before giving up:
//	the binary's range view of an unsaved document does not always align
//	with the editor's. When the fallback also reports nothing, the
//	result is nil, never an error. There is no further retry.
//
// Inputs:
//
//	ctx - Context for cancellation and timeout
//	doc - The document to fix
//	rng - Optional zero-based, end-exclusive block to fix; nil for the
//	      whole document
//
// Outputs:
//
//	*FixResult - The replacement text, nil when there is nothing to fix
//	error - Non-nil when the fix could not run or the chosen finding
//	        had no usable replacement
//
// Thread Safety: Safe for concurrent use.
func (c *Client) Fix(ctx context.Context, doc Document, rng *Range) (*FixResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	ctx, span := startOpSpan(ctx, ModeFix, doc.URI)
	defer span.End()

	opLog := slog.With(
		slog.String("op_id", uuid.NewString()),
		slog.String("uri", doc.URI),
	)

	res, dur, err := c.fix(ctx, opLog, doc, rng)
	if err != nil {
		recordOpMetrics(ctx, ModeFix, dur, 0, false)
		c.breaker.RecordError(err)
		return nil, err
	}
	c.breaker.RecordSuccess()
	recordOpMetrics(ctx, ModeFix, dur, 0, true)
	return res, nil
}

// fix runs the fix operation without breaker or metrics bookkeeping. The
// returned duration covers every binary invocation the operation made,
// including the whole-file fallback leg, so one logical fix records one
// metric sample.
func (c *Client) fix(ctx context.Context, opLog *slog.Logger, doc Document, rng *Range) (*FixResult, time.Duration, error) {
	if rng == nil {
		return c.fixWholeFile(ctx, opLog, doc)
	}

	findings, result, err := c.runLint(ctx, doc.Text, rng)
	if err != nil {
		return nil, result.Duration, err
	}

	if len(findings) == 0 {
		opLog.Debug("Ranged fix found nothing, falling back to whole-file fix",
			slog.String("range", rng.String()),
		)
		res, dur, err := c.fixWholeFile(ctx, opLog, doc)
		return res, result.Duration + dur, err
	}

	rep, err := SelectReplacement(findings)
	if err != nil {
		return nil, result.Duration, err
	}

	span := replacementSpan(rep, *rng)
	opLog.Debug("Ranged fix computed",
		slog.String("range", rng.String()),
		slog.String("span", span.String()),
		slog.Duration("duration", result.Duration),
	)
	return &FixResult{NewText: rep.NewContent, Span: &span}, result.Duration, nil
}

// replacementSpan converts a replacement's one-based inclusive span into
// the editor's numbering, clamped to the requested range. A range-scoped
// lint reports only inside the range, so the clamp matters only for a
// binary that strays outside it.
func replacementSpan(rep Replacement, rng Range) Range {
	span := Range{Start: rep.Lines.Start - 1, End: rep.Lines.End}
	if span.Start < rng.Start {
		span.Start = rng.Start
	}
	if span.End > rng.End {
		span.End = rng.End
	}
	return span
}

// fixWholeFile invokes fix mode over the entire document.
func (c *Client) fixWholeFile(ctx context.Context, opLog *slog.Logger, doc Document) (*FixResult, time.Duration, error) {
	result, err := c.invoke(ctx, ModeFix, []string{"--mode", "fix", "-"}, doc.Text)
	if err != nil {
		return nil, result.Duration, err
	}

	if result.ExitCode == 0 {
		opLog.Debug("Nothing to fix")
		return nil, result.Duration, nil
	}

	opLog.Debug("Whole-file fix computed",
		slog.Duration("duration", result.Duration),
	)
	return &FixResult{NewText: result.Stdout, WholeFile: true}, result.Duration, nil
}

// runLint invokes lint mode, optionally range-scoped, and parses findings.
func (c *Client) runLint(ctx context.Context, text string, rng *Range) ([]Finding, ExecutionResult, error) {
	args := []string{"--mode", "lint"}
	if rng != nil {
		args = append(args, "--lines", LinesArg(*rng))
	}
	args = append(args, "-")

	result, err := c.invoke(ctx, ModeLint, args, text)
	if err != nil {
		return nil, result, err
	}

	findings, err := ParseFindings(result.Stdout, result.ExitCode)
	if err != nil {
		return nil, result, err
	}
	return findings, result, nil
}

// invoke runs the binary through the breaker gate and maps exit codes.
func (c *Client) invoke(ctx context.Context, mode Mode, args []string, stdin string) (ExecutionResult, error) {
	if c.breaker.Disabled() {
		return ExecutionResult{}, ErrCircuitOpen
	}

	result, err := c.invoker.Run(ctx, mode, args, stdin)
	if err != nil {
		return result, err
	}

	if result.ExitCode != 0 && result.ExitCode != 1 {
		return result, NewSorterError(binaryName(c.invoker), mode,
			fmt.Errorf("%w: exit code %d", ErrProtocol, result.ExitCode)).
			WithOutput(strings.TrimSpace(result.Stderr))
	}
	return result, nil
}

// binaryName extracts the binary path when the invoker exposes one.
func binaryName(inv Invoker) string {
	if p, ok := inv.(*ProcessInvoker); ok {
		return p.BinaryPath()
	}
	return "keep-sorted"
}
