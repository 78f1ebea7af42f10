// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlanner(inv *stubInvoker) (*EditPlanner, *DiagnosticStore) {
	store := NewDiagnosticStore()
	client := NewClient(inv, NewBreaker())
	return NewEditPlanner(client, store), store
}

func TestEditPlanner_CreateEdit_NoDiagnostics(t *testing.T) {
	inv := &stubInvoker{}
	planner, _ := newTestPlanner(inv)

	plan, err := planner.CreateEdit(context.Background(), Document{URI: "a.go", Text: "x\n"}, nil)
	require.NoError(t, err)
	assert.Nil(t, plan)
	assert.Empty(t, inv.calls, "no diagnostics means no binary invocation")
}

func TestEditPlanner_CreateEdit_RangedEdit(t *testing.T) {
	inv := &stubInvoker{}
	inv.queue(1, findingsJSON(t, []Finding{{
		Lines:   LineSpan{Start: 2, End: 4},
		Message: "block is not sorted",
		Fixes: []Fix{{Replacements: []Replacement{{
			Lines:      LineSpan{Start: 2, End: 4},
			NewContent: "a\nb\nc\n",
		}}}},
	}}))
	planner, store := newTestPlanner(inv)

	doc := Document{URI: "a.go", Text: "h\nc\nb\na\nt\n"}
	diag := Diagnostic{Range: Range{Start: 1, End: 4}, Message: "block is not sorted", Source: DiagnosticSource}
	store.Set(doc.URI, []Diagnostic{diag})

	plan, err := planner.CreateEdit(context.Background(), doc, &diag.Range)
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.Equal(t, doc.URI, plan.Edit.URI)
	assert.Equal(t, diag.Range, plan.Edit.Range)
	assert.Equal(t, "a\nb\nc\n", plan.Edit.NewText)
	require.Len(t, plan.Diagnostics, 1)
	assert.Equal(t, diag, plan.Diagnostics[0])
}

func TestEditPlanner_CreateEdit_WideRangeTargetsBlockSpan(t *testing.T) {
	// The caller asks about the whole document; the edit still replaces
	// only the block's span, not every line in the range.
	inv := &stubInvoker{}
	inv.queue(1, findingsJSON(t, []Finding{{
		Lines:   LineSpan{Start: 2, End: 4},
		Message: "block is not sorted",
		Fixes: []Fix{{Replacements: []Replacement{{
			Lines:      LineSpan{Start: 2, End: 4},
			NewContent: "a\nb\nc\n",
		}}}},
	}}))
	planner, store := newTestPlanner(inv)

	doc := Document{URI: "a.go", Text: "h\nc\nb\na\nt\n"}
	store.Set(doc.URI, []Diagnostic{{Range: Range{Start: 1, End: 4}, Message: "block is not sorted"}})

	plan, err := planner.CreateEdit(context.Background(), doc, &Range{Start: 0, End: 5})
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.Equal(t, Range{Start: 1, End: 4}, plan.Edit.Range)
	assert.Equal(t, "a\nb\nc\n", plan.Edit.NewText)
}

func TestEditPlanner_CreateEdit_WholeFileEdit(t *testing.T) {
	inv := &stubInvoker{}
	inv.queue(1, "sorted\nwhole\nfile\n")
	planner, store := newTestPlanner(inv)

	doc := Document{URI: "a.go", Text: "whole\nsorted\nfile\n"}
	store.Set(doc.URI, []Diagnostic{{Range: Range{Start: 0, End: 3}, Message: "m"}})

	plan, err := planner.CreateEdit(context.Background(), doc, nil)
	require.NoError(t, err)
	require.NotNil(t, plan)

	// Whole-file edits cover every line of the document.
	assert.Equal(t, Range{Start: 0, End: 3}, plan.Edit.Range)
	assert.Equal(t, "sorted\nwhole\nfile\n", plan.Edit.NewText)
}

func TestEditPlanner_CreateEdit_RangeFiltersDiagnostics(t *testing.T) {
	inv := &stubInvoker{}
	inv.queue(1, findingsJSON(t, []Finding{{
		Lines: LineSpan{Start: 1, End: 2},
		Fixes: []Fix{{Replacements: []Replacement{{
			Lines: LineSpan{Start: 1, End: 2}, NewContent: "a\nb\n",
		}}}},
	}}))
	planner, store := newTestPlanner(inv)

	doc := Document{URI: "a.go", Text: "b\na\nz\ny\n"}
	inRange := Diagnostic{Range: Range{Start: 0, End: 2}, Message: "first block"}
	outOfRange := Diagnostic{Range: Range{Start: 2, End: 4}, Message: "second block"}
	store.Set(doc.URI, []Diagnostic{inRange, outOfRange})

	plan, err := planner.CreateEdit(context.Background(), doc, &Range{Start: 0, End: 2})
	require.NoError(t, err)
	require.NotNil(t, plan)

	require.Len(t, plan.Diagnostics, 1)
	assert.Equal(t, inRange, plan.Diagnostics[0])
}

func TestEditPlanner_CreateEdit_NonOverlappingRange(t *testing.T) {
	inv := &stubInvoker{}
	planner, store := newTestPlanner(inv)

	store.Set("a.go", []Diagnostic{{Range: Range{Start: 0, End: 2}, Message: "m"}})

	plan, err := planner.CreateEdit(context.Background(), Document{URI: "a.go", Text: "x\ny\nz\n"}, &Range{Start: 5, End: 8})
	require.NoError(t, err)
	assert.Nil(t, plan)
	assert.Empty(t, inv.calls)
}

func TestEditPlanner_Complete_RetiresDiagnostics(t *testing.T) {
	inv := &stubInvoker{}
	inv.queue(1, "fixed\n")
	planner, store := newTestPlanner(inv)

	doc := Document{URI: "a.go", Text: "broken\n"}
	diag := Diagnostic{Range: Range{Start: 0, End: 1}, Message: "m"}
	store.Set(doc.URI, []Diagnostic{diag})

	plan, err := planner.CreateEdit(context.Background(), doc, nil)
	require.NoError(t, err)
	require.NotNil(t, plan)

	planner.Complete(plan)
	assert.Empty(t, store.Get(doc.URI))
}

func TestEditPlanner_Abandon_KeepsDiagnostics(t *testing.T) {
	inv := &stubInvoker{}
	inv.queue(1, "fixed\n")
	inv.queue(1, "fixed\n")
	planner, store := newTestPlanner(inv)

	doc := Document{URI: "a.go", Text: "broken\n"}
	diag := Diagnostic{Range: Range{Start: 0, End: 1}, Message: "m"}
	store.Set(doc.URI, []Diagnostic{diag})

	plan, err := planner.CreateEdit(context.Background(), doc, nil)
	require.NoError(t, err)
	require.NotNil(t, plan)

	planner.Abandon(plan)
	assert.Len(t, store.Get(doc.URI), 1, "abandoned plan leaves the diagnostic in place")

	// The diagnostic is claimable again.
	plan, err = planner.CreateEdit(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.NotNil(t, plan)
}

func TestEditPlanner_InFlightDiagnosticsNotReclaimed(t *testing.T) {
	inv := &stubInvoker{}
	inv.queue(1, "fixed\n")
	planner, store := newTestPlanner(inv)

	doc := Document{URI: "a.go", Text: "broken\n"}
	store.Set(doc.URI, []Diagnostic{{Range: Range{Start: 0, End: 1}, Message: "m"}})

	first, err := planner.CreateEdit(context.Background(), doc, nil)
	require.NoError(t, err)
	require.NotNil(t, first)

	// The same diagnostic is already being retired; a second plan has
	// nothing to claim.
	second, err := planner.CreateEdit(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Nil(t, second)
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"one line no newline", "a", 1},
		{"one line with newline", "a\n", 1},
		{"three lines", "a\nb\nc\n", 3},
		{"trailing fragment", "a\nb", 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountLines(tc.text); got != tc.want {
				t.Errorf("CountLines(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}
