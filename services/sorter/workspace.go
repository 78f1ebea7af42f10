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
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// =============================================================================
// WORKSPACE OPERATIONS
// =============================================================================

// workspaceFixParallelism bounds concurrent binary invocations during a
// workspace fix. Independent documents may be fixed concurrently; the
// limit keeps process fan-out sane on large trees.
const workspaceFixParallelism = 4

// FileFix describes the outcome for one file in a workspace fix.
type FileFix struct {
	// Path is the file the fix was attempted on.
	Path string

	// Changed is true when the file content was rewritten.
	Changed bool
}

// EnumerateFiles lists the workspace files a fix-all pass covers.
//
// Description:
//
//	Walks the root recursively, skipping directories and files matching
//	the exclude patterns. Hidden directories are not skipped implicitly;
//	callers put them in the exclude list (the default config does).
//
// Inputs:
//
//	root - Directory to walk
//	excludes - Glob patterns matched against base names
//
// Outputs:
//
//	[]string - Paths in walk order
//	error - Non-nil if the walk failed
func EnumerateFiles(root string, excludes []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		for _, pattern := range excludes {
			matched := base == pattern
			if !matched {
				matched, _ = filepath.Match(pattern, base)
			}
			if matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking workspace: %w", err)
	}
	return files, nil
}

// FixFiles applies a whole-file fix to each path, rewriting changed files
// in place.
//
// Description:
//
//	Fixes files concurrently (bounded), reading each from disk, asking
//	the client for a whole-file fix, and writing the corrected text back
//	when the binary reported something to change. Results come back in
//	input order. The first error cancels the remaining work.
//
// Inputs:
//
//	ctx - Context for cancellation
//	client - The lint/fix client
//	paths - Files to fix
//
// Outputs:
//
//	[]FileFix - Per-file outcomes in input order
//	error - Non-nil if any file failed to fix
//
// Thread Safety: Safe for concurrent use.
func FixFiles(ctx context.Context, client *Client, paths []string) ([]FileFix, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	results := make([]FileFix, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workspaceFixParallelism)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			doc := Document{URI: path, Text: string(content)}
			res, err := client.Fix(gctx, doc, nil)
			if err != nil {
				return fmt.Errorf("fixing %s: %w", path, err)
			}

			outcome := FileFix{Path: path}
			if res != nil && res.NewText != doc.Text {
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("fixing %s: %w", path, err)
				}
				if err := os.WriteFile(path, []byte(res.NewText), info.Mode().Perm()); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				outcome.Changed = true
			}

			mu.Lock()
			results[i] = outcome
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
