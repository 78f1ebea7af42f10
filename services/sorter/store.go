// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"sync"
)

// DiagnosticStore holds the current diagnostic set per document.
//
// Description:
//
//	Keyed by document URI, one current set per document. Every lint pass
//	replaces the previous set wholesale (or clears it when the pass found
//	nothing); diagnostics never persist independent of a pass.
//
// Thread Safety: Safe for concurrent use. Distinct URIs never contend
// beyond the map lock.
type DiagnosticStore struct {
	mu    sync.RWMutex
	byURI map[string][]Diagnostic
}

// NewDiagnosticStore creates an empty store.
func NewDiagnosticStore() *DiagnosticStore {
	return &DiagnosticStore{
		byURI: make(map[string][]Diagnostic),
	}
}

// Set replaces the diagnostic set for a document.
func (s *DiagnosticStore) Set(uri string, diags []Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(diags) == 0 {
		delete(s.byURI, uri)
		return
	}
	copied := make([]Diagnostic, len(diags))
	copy(copied, diags)
	s.byURI[uri] = copied
}

// Get returns the current diagnostics for a document.
//
// The returned slice is a copy; mutating it does not affect the store.
func (s *DiagnosticStore) Get(uri string) []Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	diags := s.byURI[uri]
	if len(diags) == 0 {
		return nil
	}
	copied := make([]Diagnostic, len(diags))
	copy(copied, diags)
	return copied
}

// Clear removes the diagnostics for a document.
func (s *DiagnosticStore) Clear(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byURI, uri)
}

// ClearAll removes every stored diagnostic set.
func (s *DiagnosticStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byURI = make(map[string][]Diagnostic)
}

// URIs returns the documents that currently have diagnostics.
func (s *DiagnosticStore) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.byURI))
	for uri := range s.byURI {
		uris = append(uris, uri)
	}
	return uris
}
