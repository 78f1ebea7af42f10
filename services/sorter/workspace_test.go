// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedInvoker answers every call through a single function, which
// suits concurrent callers better than a queued stub.
type scriptedInvoker struct {
	respond func(stdin string) (ExecutionResult, error)
}

func (s *scriptedInvoker) Run(ctx context.Context, mode Mode, args []string, stdin string) (ExecutionResult, error) {
	return s.respond(stdin)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEnumerateFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a\n")
	writeFile(t, dir, "sub/b.txt", "b\n")
	writeFile(t, dir, "node_modules/dep.js", "x\n")
	writeFile(t, dir, "c.min.js", "y\n")

	files, err := EnumerateFiles(dir, []string{"node_modules", "*.min.js"})
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.ElementsMatch(t, []string{"a.txt", "sub/b.txt"}, names)
}

func TestEnumerateFiles_MissingRoot(t *testing.T) {
	_, err := EnumerateFiles(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}

func TestFixFiles_RewritesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	dirty := writeFile(t, dir, "dirty.txt", "b\na\n")
	clean := writeFile(t, dir, "clean.txt", "a\nb\n")

	inv := &scriptedInvoker{
		respond: func(stdin string) (ExecutionResult, error) {
			if stdin == "b\na\n" {
				return ExecutionResult{ExitCode: 1, Stdout: "a\nb\n"}, nil
			}
			return ExecutionResult{ExitCode: 0}, nil
		},
	}
	client := NewClient(inv, NewBreaker())

	results, err := FixFiles(context.Background(), client, []string{dirty, clean})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Results come back in input order.
	assert.Equal(t, dirty, results[0].Path)
	assert.True(t, results[0].Changed)
	assert.Equal(t, clean, results[1].Path)
	assert.False(t, results[1].Changed)

	content, err := os.ReadFile(dirty)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(content))

	content, err = os.ReadFile(clean)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(content))
}

func TestFixFiles_PropagatesError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x\n")

	inv := &scriptedInvoker{
		respond: func(string) (ExecutionResult, error) {
			return ExecutionResult{ExitCode: 2, Stderr: "boom"}, nil
		},
	}
	client := NewClient(inv, NewBreaker())

	_, err := FixFiles(context.Background(), client, []string{path})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestFixFiles_Empty(t *testing.T) {
	client := NewClient(&stubInvoker{}, NewBreaker())
	results, err := FixFiles(context.Background(), client, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
