// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevel_String(t *testing.T) {
	cases := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tc := range cases {
		if got := tc.level.String(); got != tc.want {
			t.Errorf("Level(%d).String() = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	logger := New(Config{})
	defer logger.Close()

	if logger.Slog() == nil {
		t.Fatal("Slog() should not be nil")
	}
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelDebug,
		LogDir:  dir,
		Service: "test-service",
		Quiet:   true,
	})

	logger.Info("file log entry", "key", "value")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	name := "test-service_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Reading log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("Log file is not JSON: %v", err)
	}
	if entry["msg"] != "file log entry" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v", entry["key"])
	}
	if entry["service"] != "test-service" {
		t.Errorf("service = %v", entry["service"])
	}
}

func TestNew_LevelFilter(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelWarn,
		LogDir:  dir,
		Service: "filter",
		Quiet:   true,
	})

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	name := "filter_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Reading log file: %v", err)
	}

	content := string(data)
	if strings.Contains(content, "dropped") {
		t.Errorf("Filtered messages leaked into file:\n%s", content)
	}
	if !strings.Contains(content, "kept") {
		t.Errorf("Warn message missing from file:\n%s", content)
	}
}

func TestLogger_With(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		LogDir:  dir,
		Service: "with",
		Quiet:   true,
	})

	child := logger.With("request_id", "abc123")
	child.Info("child entry")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	name := "with_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Reading log file: %v", err)
	}
	if !strings.Contains(string(data), "abc123") {
		t.Errorf("Child attribute missing:\n%s", data)
	}
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	logger := New(Config{Quiet: true})
	if err := logger.Close(); err != nil {
		t.Errorf("Close without file: %v", err)
	}
	// Double close is safe.
	if err := logger.Close(); err != nil {
		t.Errorf("Second Close: %v", err)
	}
}

func TestNew_BadLogDirDegrades(t *testing.T) {
	// A file where the directory should be: MkdirAll fails, logging
	// degrades to stderr without error.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := New(Config{LogDir: blocker, Quiet: true})
	logger.Info("goes nowhere")
	if err := logger.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/logs"); got != filepath.Join(home, "logs") {
		t.Errorf("ExpandPath(~/logs) = %q", got)
	}
	if got := ExpandPath("/var/log"); got != "/var/log" {
		t.Errorf("ExpandPath(/var/log) = %q", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Errorf("ExpandPath(\"\") = %q", got)
	}
}
