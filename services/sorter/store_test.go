// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import "testing"

func TestDiagnosticStore_SetAndGet(t *testing.T) {
	store := NewDiagnosticStore()

	diags := []Diagnostic{
		{Range: Range{Start: 1, End: 5}, Message: "out of order", Source: DiagnosticSource},
	}
	store.Set("a.go", diags)

	got := store.Get("a.go")
	if len(got) != 1 {
		t.Fatalf("Diagnostics = %d, want 1", len(got))
	}
	if got[0].Message != "out of order" {
		t.Errorf("Message = %q", got[0].Message)
	}
}

func TestDiagnosticStore_GetReturnsCopy(t *testing.T) {
	store := NewDiagnosticStore()
	store.Set("a.go", []Diagnostic{{Message: "original"}})

	got := store.Get("a.go")
	got[0].Message = "mutated"

	if store.Get("a.go")[0].Message != "original" {
		t.Error("Get must return a copy")
	}
}

func TestDiagnosticStore_SetReplacesWholesale(t *testing.T) {
	store := NewDiagnosticStore()
	store.Set("a.go", []Diagnostic{{Message: "one"}, {Message: "two"}})
	store.Set("a.go", []Diagnostic{{Message: "three"}})

	got := store.Get("a.go")
	if len(got) != 1 || got[0].Message != "three" {
		t.Errorf("Diagnostics = %v, want single %q", got, "three")
	}
}

func TestDiagnosticStore_SetEmptyDeletes(t *testing.T) {
	store := NewDiagnosticStore()
	store.Set("a.go", []Diagnostic{{Message: "one"}})
	store.Set("a.go", nil)

	if got := store.Get("a.go"); len(got) != 0 {
		t.Errorf("Diagnostics = %d, want 0", len(got))
	}
	if uris := store.URIs(); len(uris) != 0 {
		t.Errorf("URIs = %v, want empty", uris)
	}
}

func TestDiagnosticStore_ClearAll(t *testing.T) {
	store := NewDiagnosticStore()
	store.Set("a.go", []Diagnostic{{Message: "one"}})
	store.Set("b.go", []Diagnostic{{Message: "two"}})

	store.ClearAll()

	if uris := store.URIs(); len(uris) != 0 {
		t.Errorf("URIs = %v, want empty", uris)
	}
}

func TestDiagnosticStore_GetUnknown(t *testing.T) {
	store := NewDiagnosticStore()
	if got := store.Get("missing.go"); got != nil {
		t.Errorf("Get(unknown) = %v, want nil", got)
	}
}
