// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// PER-DOCUMENT SCHEDULER
// =============================================================================

// taskState tracks one scheduled document task.
type taskState int

const (
	taskIdle taskState = iota
	taskScheduled
	taskRunning
)

// Scheduler debounces per-document work.
//
// Description:
//
//	Keeps one scheduled-task handle per document. Scheduling a document
//	that already has a pending task cancels and reschedules it, so a
//	burst of change events yields a single run after the delay. Distinct
//	documents never delay each other. Save events use Immediate, which
//	bypasses the delay.
//
//	A task moves Idle -> Scheduled -> Running -> Idle. Only scheduled
//	(not yet started) work can be canceled; a running task is never
//	interrupted.
//
// Thread Safety: Safe for concurrent use.
type Scheduler struct {
	delay time.Duration
	run   func(path string)

	mu      sync.Mutex
	entries map[string]*schedEntry
	stopped bool
}

type schedEntry struct {
	timer *time.Timer
	state taskState
}

// NewScheduler creates a scheduler that invokes run after delay.
func NewScheduler(delay time.Duration, run func(path string)) *Scheduler {
	return &Scheduler{
		delay:   delay,
		run:     run,
		entries: make(map[string]*schedEntry),
	}
}

// Schedule queues a debounced run for the document, canceling and
// replacing any pending one.
func (s *Scheduler) Schedule(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if entry, ok := s.entries[path]; ok && entry.state == taskScheduled {
		entry.timer.Reset(s.delay)
		return
	}

	entry := &schedEntry{state: taskScheduled}
	entry.timer = time.AfterFunc(s.delay, func() {
		s.fire(path, entry)
	})
	s.entries[path] = entry
}

// Immediate runs the document's task now, canceling any pending timer.
func (s *Scheduler) Immediate(path string) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if entry, ok := s.entries[path]; ok && entry.state == taskScheduled {
		entry.timer.Stop()
		delete(s.entries, path)
	}
	s.mu.Unlock()

	s.run(path)
}

// Pending reports whether the document has a scheduled, not yet started
// task.
func (s *Scheduler) Pending(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[path]
	return ok && entry.state == taskScheduled
}

// Stop cancels all scheduled work. Running tasks finish; nothing new
// starts.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for path, entry := range s.entries {
		if entry.state == taskScheduled {
			entry.timer.Stop()
		}
		delete(s.entries, path)
	}
}

// fire transitions a task to running and executes it.
func (s *Scheduler) fire(path string, entry *schedEntry) {
	s.mu.Lock()
	if s.stopped || s.entries[path] != entry {
		s.mu.Unlock()
		return
	}
	entry.state = taskRunning
	s.mu.Unlock()

	s.run(path)

	s.mu.Lock()
	if s.entries[path] == entry {
		delete(s.entries, path)
	}
	s.mu.Unlock()
}

// =============================================================================
// FILE WATCHER
// =============================================================================

// Watcher watches a directory tree and schedules lints on change.
//
// Description:
//
//	Recursively watches the root, filters events through the exclude
//	patterns, and feeds write/create events into the per-document
//	Scheduler. There is no cancellation of an in-flight lint once its
//	process spawned; only not-yet-started scheduled work is canceled by
//	rescheduling.
//
// Thread Safety: Safe for concurrent use.
type Watcher struct {
	root      string
	excludes  []string
	watcher   *fsnotify.Watcher
	scheduler *Scheduler

	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher creates a watcher feeding the given scheduler.
//
// Inputs:
//
//	root - Directory to watch recursively
//	excludes - Glob patterns for files and directories to skip
//	scheduler - Receives Schedule calls for changed files
//
// Outputs:
//
//	*Watcher - Ready to Start
//	error - Non-nil if the OS watcher could not be created
func NewWatcher(root string, excludes []string, scheduler *Scheduler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:      root,
		excludes:  excludes,
		watcher:   fsw,
		scheduler: scheduler,
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. Returns once the tree is registered; event
// processing continues in a background goroutine until Stop or context
// cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and cancels scheduled work.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
		w.scheduler.Stop()
	})
}

// addRecursive registers the root and every non-excluded subdirectory.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// excluded reports whether a path matches any exclude pattern.
func (w *Watcher) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.excludes {
		if base == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// processEvents feeds file events into the scheduler.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.excluded(event.Name) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						slog.Warn("Failed to watch new directory",
							slog.String("path", event.Name),
							slog.String("error", err.Error()),
						)
					}
					continue
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.scheduler.Schedule(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", slog.String("error", err.Error()))
		}
	}
}
