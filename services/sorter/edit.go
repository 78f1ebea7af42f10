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
	"strings"
	"sync"
)

// =============================================================================
// EDIT PLANNER
// =============================================================================

// EditPlanner turns stored diagnostics into atomic workspace edits.
//
// Description:
//
//	Given a document and an optional range, finds the relevant stored
//	diagnostics, requests a fix through the client, and assembles a
//	single edit replacing either the block's reported span or the whole
//	document. The
//	returned plan carries the exact diagnostic set it was computed
//	against so the caller retires precisely those, never guessing which
//	diagnostics an edit resolved.
//
// Thread Safety: Safe for concurrent use.
type EditPlanner struct {
	client *Client
	store  *DiagnosticStore

	mu       sync.Mutex
	retiring map[string][]Diagnostic
}

// NewEditPlanner creates a planner over a client and diagnostic store.
func NewEditPlanner(client *Client, store *DiagnosticStore) *EditPlanner {
	return &EditPlanner{
		client:   client,
		store:    store,
		retiring: make(map[string][]Diagnostic),
	}
}

// CreateEdit plans a fix for the diagnostics of a document.
//
// Description:
//
//	Intersects the document's current diagnostics with the range (when
//	given) and skips diagnostics already being retired by an in-flight
//	plan. Returns nil when no diagnostics are relevant or when the fix
//	reports nothing to change. On success the plan's diagnostics are
//	marked as retiring until Complete or Abandon is called.
//
// Inputs:
//
//	ctx - Context for cancellation and timeout
//	doc - The document to plan an edit for
//	rng - Optional block scope; nil plans a whole-file edit
//
// Outputs:
//
//	*EditPlan - The edit plus the diagnostics it retires, nil for no-op
//	error - Non-nil when the fix could not run
//
// Thread Safety: Safe for concurrent use.
func (p *EditPlanner) CreateEdit(ctx context.Context, doc Document, rng *Range) (*EditPlan, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	relevant := p.claimDiagnostics(doc.URI, rng)
	if len(relevant) == 0 {
		return nil, nil
	}

	res, err := p.client.Fix(ctx, doc, rng)
	if err != nil {
		p.release(doc.URI, relevant)
		return nil, err
	}
	if res == nil {
		p.release(doc.URI, relevant)
		return nil, nil
	}

	target := wholeDocumentRange(doc)
	if res.Span != nil {
		// The edit replaces the block's own span, not the requested
		// range, so a wide range never erases the lines around the
		// block.
		target = *res.Span
	}

	return &EditPlan{
		Edit: WorkspaceEdit{
			URI:     doc.URI,
			Range:   target,
			NewText: res.NewText,
		},
		Diagnostics: relevant,
	}, nil
}

// Complete retires a plan's diagnostics after the caller applied its edit.
func (p *EditPlanner) Complete(plan *EditPlan) {
	if plan == nil {
		return
	}
	p.release(plan.Edit.URI, plan.Diagnostics)

	remaining := diagnosticsExcept(p.store.Get(plan.Edit.URI), plan.Diagnostics)
	p.store.Set(plan.Edit.URI, remaining)
}

// Abandon releases a plan without retiring anything, e.g. when the caller
// failed to apply the edit.
func (p *EditPlanner) Abandon(plan *EditPlan) {
	if plan == nil {
		return
	}
	p.release(plan.Edit.URI, plan.Diagnostics)
}

// claimDiagnostics selects and marks the diagnostics a new plan covers.
func (p *EditPlanner) claimDiagnostics(uri string, rng *Range) []Diagnostic {
	current := p.store.Get(uri)
	if len(current) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	inFlight := p.retiring[uri]
	var claimed []Diagnostic
	for _, d := range current {
		if rng != nil && !d.Range.Overlaps(*rng) {
			continue
		}
		if containsDiagnostic(inFlight, d) {
			continue
		}
		claimed = append(claimed, d)
	}
	if len(claimed) > 0 {
		p.retiring[uri] = append(inFlight, claimed...)
	}
	return claimed
}

// release removes diagnostics from the retiring set.
func (p *EditPlanner) release(uri string, diags []Diagnostic) {
	p.mu.Lock()
	defer p.mu.Unlock()

	remaining := diagnosticsExcept(p.retiring[uri], diags)
	if len(remaining) == 0 {
		delete(p.retiring, uri)
		return
	}
	p.retiring[uri] = remaining
}

// wholeDocumentRange covers every line of the document.
func wholeDocumentRange(doc Document) Range {
	return Range{Start: 0, End: CountLines(doc.Text)}
}

// CountLines returns the number of lines in text. A trailing newline does
// not start a new line; empty text has zero lines.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// containsDiagnostic reports whether the slice holds an equal diagnostic.
func containsDiagnostic(diags []Diagnostic, d Diagnostic) bool {
	for _, other := range diags {
		if other == d {
			return true
		}
	}
	return false
}

// diagnosticsExcept returns diags without the members of exclude.
func diagnosticsExcept(diags, exclude []Diagnostic) []Diagnostic {
	if len(diags) == 0 {
		return nil
	}
	var result []Diagnostic
	for _, d := range diags {
		if !containsDiagnostic(exclude, d) {
			result = append(result, d)
		}
	}
	return result
}
