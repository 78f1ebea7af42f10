// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// DefaultFailureThreshold is the number of consecutive failures after
// which the breaker disables the integration.
const DefaultFailureThreshold = 5

// ErrorRecord is one failure observed by the breaker.
type ErrorRecord struct {
	// Err is the recorded failure.
	Err error

	// Time is when the failure was recorded.
	Time time.Time
}

// DisableEvent carries the error-report payload of the one-time disable
// transition.
type DisableEvent struct {
	// Errors is the frozen error history at trip time.
	Errors []ErrorRecord

	// Report is the formatted diagnosis, sufficient for a bug report.
	Report string
}

// Breaker tracks consecutive failures across sorter operations.
//
// Description:
//
//	Prevents the integration from hammering a consistently-failing
//	binary. After the threshold of consecutive failures, the breaker
//	enters a terminal disabled state, notifies subscribers exactly once
//	with an error report, and blocks further operations. Disabled is
//	monotonic: once tripped, the breaker stays tripped for the process
//	lifetime; re-enablement is an explicit external action (a reload
//	constructs a fresh breaker).
//
//	The error history is retained across successful recoveries and is
//	consumed only by the disable event, so the eventual report shows the
//	full failure trail, not just the final run.
//
// Thread Safety: Safe for concurrent use.
type Breaker struct {
	mu          sync.Mutex
	threshold   int
	consecutive int
	history     []ErrorRecord
	disabled    bool
	subscribers []func(DisableEvent)
}

// BreakerOption configures the Breaker.
type BreakerOption func(*Breaker)

// WithThreshold overrides the consecutive-failure threshold.
func WithThreshold(n int) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// NewBreaker creates a breaker in the enabled state.
//
// The breaker is constructed explicitly at activation and passed to the
// components observing it; there is no package-level singleton.
func NewBreaker(opts ...BreakerOption) *Breaker {
	b := &Breaker{
		threshold: DefaultFailureThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OnDisable registers a subscriber for the disable event.
//
// Subscribers registered after the breaker has tripped are not called;
// the event fires exactly once, enforced by the breaker's own state
// transition rather than emitter semantics.
func (b *Breaker) OnDisable(fn func(DisableEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// RecordSuccess resets the consecutive-failure count.
//
// Description:
//
//	A no-op once disabled. Success resets the count but NOT the history:
//	history is cleared only by the disable event consuming it.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disabled {
		return
	}
	b.consecutive = 0
}

// RecordError records a failure and reports whether operations may
// continue.
//
// Description:
//
//	Returns false immediately, without appending, when already disabled.
//	Otherwise appends to the history and increments the consecutive
//	count; reaching the threshold flips the breaker to disabled, fires
//	the one-time disable event with the frozen history and formatted
//	report, and returns false.
//
// Inputs:
//
//	err - The failure to record. Must not be nil.
//
// Outputs:
//
//	bool - True if the integration may keep operating
func (b *Breaker) RecordError(err error) bool {
	b.mu.Lock()

	if b.disabled {
		b.mu.Unlock()
		return false
	}

	b.history = append(b.history, ErrorRecord{Err: err, Time: time.Now()})
	b.consecutive++

	if b.consecutive < b.threshold {
		b.mu.Unlock()
		return true
	}

	// Threshold reached: terminal transition, exactly once.
	b.disabled = true
	frozen := make([]ErrorRecord, len(b.history))
	copy(frozen, b.history)
	b.history = nil
	subscribers := make([]func(DisableEvent), len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.Unlock()

	event := DisableEvent{
		Errors: frozen,
		Report: formatReport(frozen),
	}
	for _, fn := range subscribers {
		fn(event)
	}
	return false
}

// Disabled reports whether the breaker has tripped.
func (b *Breaker) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

// ConsecutiveErrors returns the current consecutive-failure count.
func (b *Breaker) ConsecutiveErrors() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutive
}

// formatReport assembles the bug-report payload once, at trip time.
func formatReport(records []ErrorRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "sortguard disabled after repeated failures\n")
	fmt.Fprintf(&sb, "time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&sb, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&sb, "errors: %d\n\n", len(records))
	for i, r := range records {
		fmt.Fprintf(&sb, "  %d. [%s] %v\n", i+1, r.Time.Format(time.RFC3339), r.Err)
	}
	return sb.String()
}
