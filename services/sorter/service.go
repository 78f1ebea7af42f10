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
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// SERVICE
// =============================================================================

// ServiceConfig configures the sorter service.
type ServiceConfig struct {
	// BinaryDir is the directory holding the bundled binaries. Used by
	// platform resolution unless BinaryPath overrides it.
	BinaryDir string `validate:"required_without=BinaryPath"`

	// BinaryPath overrides platform resolution with an explicit binary.
	BinaryPath string

	// Timeout bounds each binary invocation. Zero disables the limit.
	Timeout time.Duration `validate:"min=0"`

	// DebounceWindow is the delay between a change event and its lint.
	DebounceWindow time.Duration `validate:"min=0"`

	// Excludes are glob patterns skipped by watch and workspace fixes.
	Excludes []string

	// FailureThreshold is the breaker's consecutive-failure limit.
	FailureThreshold int `validate:"min=1"`
}

// DefaultServiceConfig returns the stock configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		BinaryDir:        "bin",
		Timeout:          30 * time.Second,
		DebounceWindow:   time.Second,
		Excludes:         []string{".git", "node_modules", "vendor", "*.min.js"},
		FailureThreshold: DefaultFailureThreshold,
	}
}

// ServiceStatus is a snapshot of the service's health.
type ServiceStatus struct {
	// Disabled is true once the breaker has tripped.
	Disabled bool `json:"disabled"`

	// ConsecutiveErrors is the breaker's current failure run.
	ConsecutiveErrors int `json:"consecutive_errors"`

	// Report holds the disable report, empty while enabled.
	Report string `json:"report,omitempty"`

	// Binary is the resolved binary path.
	Binary string `json:"binary"`
}

// Service wires the sorter components for one activation lifetime.
//
// Description:
//
//	Constructs the invoker, breaker, client, diagnostic store, and edit
//	planner from one config, resolved once at construction. The service
//	is the unit a CLI command or HTTP daemon holds; a reload constructs
//	a fresh service, which is what re-enables a tripped breaker.
//
// Thread Safety: Safe for concurrent use.
type Service struct {
	cfg     ServiceConfig
	invoker *ProcessInvoker
	breaker *Breaker
	client  *Client
	store   *DiagnosticStore
	planner *EditPlanner

	mu         sync.Mutex
	lastReport string
}

// NewService validates the config and builds the component graph.
//
// Inputs:
//
//	cfg - Service configuration
//
// Outputs:
//
//	*Service - The wired service
//	error - Non-nil on config validation failure
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	binary := cfg.BinaryPath
	if binary == "" {
		binary = ResolveBinaryPath(runtime.GOOS, runtime.GOARCH, cfg.BinaryDir)
	}

	invoker := NewProcessInvoker(binary, WithTimeout(cfg.Timeout))
	breaker := NewBreaker(WithThreshold(cfg.FailureThreshold))
	store := NewDiagnosticStore()
	client := NewClient(invoker, breaker)

	s := &Service{
		cfg:     cfg,
		invoker: invoker,
		breaker: breaker,
		client:  client,
		store:   store,
		planner: NewEditPlanner(client, store),
	}

	breaker.OnDisable(func(event DisableEvent) {
		s.mu.Lock()
		s.lastReport = event.Report
		s.mu.Unlock()
		slog.Error("Sorter integration disabled after repeated failures",
			slog.Int("errors", len(event.Errors)),
		)
	})

	return s, nil
}

// Client returns the lint/fix client.
func (s *Service) Client() *Client {
	return s.client
}

// Store returns the per-document diagnostic store.
func (s *Service) Store() *DiagnosticStore {
	return s.store
}

// Planner returns the edit planner.
func (s *Service) Planner() *EditPlanner {
	return s.planner
}

// Status returns a health snapshot.
func (s *Service) Status() ServiceStatus {
	s.mu.Lock()
	report := s.lastReport
	s.mu.Unlock()

	return ServiceStatus{
		Disabled:          s.breaker.Disabled(),
		ConsecutiveErrors: s.breaker.ConsecutiveErrors(),
		Report:            report,
		Binary:            s.invoker.BinaryPath(),
	}
}

// LintDocument lints in-memory text and refreshes the stored diagnostics.
func (s *Service) LintDocument(ctx context.Context, doc Document) ([]Diagnostic, error) {
	diags, err := s.client.Lint(ctx, doc)
	if err != nil {
		return nil, err
	}
	s.store.Set(doc.URI, diags)
	return diags, nil
}

// LintFile reads a file from disk and lints it.
func (s *Service) LintFile(ctx context.Context, path string) ([]Diagnostic, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s.LintDocument(ctx, Document{URI: path, Text: string(content)})
}

// PlanEdit plans a fix for a document's current diagnostics.
func (s *Service) PlanEdit(ctx context.Context, doc Document, rng *Range) (*EditPlan, error) {
	return s.planner.CreateEdit(ctx, doc, rng)
}

// FixFile applies a whole-file (or block-scoped) fix to a file on disk.
//
// Description:
//
//	Reads the file, requests a fix, and rewrites the file when the
//	binary reported something to change. A block-scoped fix splices the
//	replacement into the original content at the span the binary
//	reported, so lines inside the requested range but outside the block
//	survive. Stored diagnostics for the file are refreshed by a
//	follow-up lint.
//
// Outputs:
//
//	bool - True when the file was rewritten
//	error - Non-nil when the fix could not run
func (s *Service) FixFile(ctx context.Context, path string, rng *Range) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	doc := Document{URI: path, Text: string(content)}

	res, err := s.client.Fix(ctx, doc, rng)
	if err != nil {
		return false, err
	}
	if res == nil {
		return false, nil
	}

	newText := res.NewText
	if res.Span != nil {
		newText, err = spliceLines(doc.Text, *res.Span, res.NewText)
		if err != nil {
			return false, err
		}
	}
	if newText == doc.Text {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("fixing %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(newText), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}

	if _, err := s.LintFile(ctx, path); err != nil {
		// The fix applied; a failed refresh only leaves stale
		// diagnostics until the next pass.
		slog.Warn("Diagnostic refresh failed after fix",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
	return true, nil
}

// FixWorkspace fixes every non-excluded file under root.
func (s *Service) FixWorkspace(ctx context.Context, root string) ([]FileFix, error) {
	files, err := EnumerateFiles(root, s.cfg.Excludes)
	if err != nil {
		return nil, err
	}
	results, err := FixFiles(ctx, s.client, files)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.Changed {
			s.store.Clear(r.Path)
		}
	}
	return results, nil
}

// Watch lints files under root as they change, debounced per document.
//
// The returned watcher runs until Stop or context cancellation.
func (s *Service) Watch(ctx context.Context, root string) (*Watcher, error) {
	scheduler := NewScheduler(s.cfg.DebounceWindow, func(path string) {
		diags, err := s.LintFile(ctx, path)
		if err != nil {
			slog.Warn("Background lint failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return
		}
		if len(diags) > 0 {
			slog.Info("Findings detected",
				slog.String("path", path),
				slog.Int("findings", len(diags)),
			)
		}
	})

	watcher, err := NewWatcher(root, s.cfg.Excludes, scheduler)
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(ctx); err != nil {
		watcher.Stop()
		return nil, err
	}
	return watcher, nil
}

// spliceLines replaces the zero-based, end-exclusive line range of text
// with replacement.
func spliceLines(text string, rng Range, replacement string) (string, error) {
	lines := splitLines(text)
	if rng.Start < 0 || rng.Start > len(lines) {
		return "", fmt.Errorf("%w: range %s outside document", ErrInvalidInput, rng)
	}
	end := rng.End
	if end < rng.Start {
		end = rng.Start
	}
	if end > len(lines) {
		end = len(lines)
	}

	var out []byte
	for _, line := range lines[:rng.Start] {
		out = append(out, line...)
	}
	out = append(out, replacement...)
	for _, line := range lines[end:] {
		out = append(out, line...)
	}
	return string(out), nil
}

// splitLines splits text into lines, each retaining its trailing newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
