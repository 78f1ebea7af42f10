// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for sorter operations.
var (
	tracer = otel.Tracer("sortguard.sorter")
	meter  = otel.Meter("sortguard.sorter")
)

// Metrics for sorter operations.
var (
	opLatency     metric.Float64Histogram
	opTotal       metric.Int64Counter
	findingsFound metric.Int64Histogram
	opFailures    metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		opLatency, err = meter.Float64Histogram(
			"sorter_duration_seconds",
			metric.WithDescription("Duration of sorter operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		opTotal, err = meter.Int64Counter(
			"sorter_operations_total",
			metric.WithDescription("Total number of sorter operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		findingsFound, err = meter.Int64Histogram(
			"sorter_findings_found",
			metric.WithDescription("Number of findings per lint operation"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		opFailures, err = meter.Int64Counter(
			"sorter_failures_total",
			metric.WithDescription("Total number of failed sorter operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startOpSpan creates a span for a lint or fix operation.
func startOpSpan(ctx context.Context, mode Mode, uri string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Client."+string(mode),
		trace.WithAttributes(
			attribute.String("sorter.mode", string(mode)),
			attribute.String("sorter.uri", uri),
		),
	)
}

// recordOpMetrics records metrics for one operation.
func recordOpMetrics(ctx context.Context, mode Mode, duration time.Duration, findings int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("mode", string(mode)),
		attribute.Bool("success", success),
	)
	opTotal.Add(ctx, 1, attrs)
	opLatency.Record(ctx, duration.Seconds(), attrs)
	if mode == ModeLint && success {
		findingsFound.Record(ctx, int64(findings), attrs)
	}
	if !success {
		opFailures.Add(ctx, 1, attrs)
	}
}
