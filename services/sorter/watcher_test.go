// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"sync"
	"testing"
	"time"
)

// runRecorder collects scheduler invocations.
type runRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *runRecorder) run(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *runRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func (r *runRecorder) waitFor(t *testing.T, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r.count() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Runs = %d after %v, want >= %d", r.count(), timeout, n)
}

func TestScheduler_DebouncesBurst(t *testing.T) {
	rec := &runRecorder{}
	s := NewScheduler(30*time.Millisecond, rec.run)
	defer s.Stop()

	// A burst of changes to one document collapses to a single run.
	for i := 0; i < 10; i++ {
		s.Schedule("a.go")
	}

	rec.waitFor(t, 1, time.Second)
	time.Sleep(60 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Errorf("Runs = %d, want 1", got)
	}
}

func TestScheduler_DistinctDocumentsIndependent(t *testing.T) {
	rec := &runRecorder{}
	s := NewScheduler(20*time.Millisecond, rec.run)
	defer s.Stop()

	s.Schedule("a.go")
	s.Schedule("b.go")
	s.Schedule("c.go")

	rec.waitFor(t, 3, time.Second)
}

func TestScheduler_Pending(t *testing.T) {
	rec := &runRecorder{}
	s := NewScheduler(50*time.Millisecond, rec.run)
	defer s.Stop()

	s.Schedule("a.go")
	if !s.Pending("a.go") {
		t.Error("Expected pending task after Schedule")
	}
	if s.Pending("b.go") {
		t.Error("Unscheduled document should not be pending")
	}

	rec.waitFor(t, 1, time.Second)
	if s.Pending("a.go") {
		t.Error("Task should not be pending after it ran")
	}
}

func TestScheduler_ImmediateBypassesDelay(t *testing.T) {
	rec := &runRecorder{}
	s := NewScheduler(10*time.Second, rec.run)
	defer s.Stop()

	s.Schedule("a.go")
	s.Immediate("a.go")

	if got := rec.count(); got != 1 {
		t.Fatalf("Runs = %d, want 1 immediately", got)
	}
	if s.Pending("a.go") {
		t.Error("Immediate should cancel the pending timer")
	}
}

func TestScheduler_StopCancelsScheduled(t *testing.T) {
	rec := &runRecorder{}
	s := NewScheduler(20*time.Millisecond, rec.run)

	s.Schedule("a.go")
	s.Stop()

	time.Sleep(50 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("Runs = %d after Stop, want 0", got)
	}

	// Scheduling after Stop is a no-op.
	s.Schedule("b.go")
	time.Sleep(50 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("Runs = %d after post-Stop Schedule, want 0", got)
	}
}

func TestScheduler_RescheduleExtendsDelay(t *testing.T) {
	rec := &runRecorder{}
	s := NewScheduler(60*time.Millisecond, rec.run)
	defer s.Stop()

	s.Schedule("a.go")
	time.Sleep(40 * time.Millisecond)
	s.Schedule("a.go")
	time.Sleep(40 * time.Millisecond)

	// The original timer would have fired by now; the reschedule pushed
	// it out.
	if got := rec.count(); got != 0 {
		t.Errorf("Runs = %d before extended deadline, want 0", got)
	}
	rec.waitFor(t, 1, time.Second)
}
