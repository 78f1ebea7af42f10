// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"time"

	"github.com/sortguard/sortguard/services/sorter"
)

// SortguardConfig is the on-disk configuration at
// ~/.sortguard/sortguard.yaml.
type SortguardConfig struct {
	// Sorter configures the binary integration.
	Sorter SorterConfig `yaml:"sorter"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`

	// Server configures the serve command.
	Server ServerConfig `yaml:"server"`
}

type SorterConfig struct {
	// BinaryDir holds the bundled keep-sorted binaries.
	BinaryDir string `yaml:"binary_dir" validate:"required_without=BinaryPath"`

	// BinaryPath overrides platform resolution with an explicit binary.
	BinaryPath string `yaml:"binary_path,omitempty"`

	// TimeoutSeconds bounds each binary invocation.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"min=0"`

	// DebounceMs is the watch-mode delay between a change and its lint.
	DebounceMs int `yaml:"debounce_ms" validate:"min=0"`

	// Excludes are glob patterns skipped by watch and fix-all.
	Excludes []string `yaml:"excludes"`

	// FailureThreshold disables the integration after this many
	// consecutive failures.
	FailureThreshold int `yaml:"failure_threshold" validate:"min=1"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Dir enables file logging when set. Supports ~ expansion.
	Dir string `yaml:"dir,omitempty"`

	// JSON forces JSON output on stderr.
	JSON bool `yaml:"json"`
}

type ServerConfig struct {
	// Port for the serve command.
	Port int `yaml:"port" validate:"min=1,max=65535"`
}

// DefaultConfig returns the config written on first run.
func DefaultConfig() SortguardConfig {
	return SortguardConfig{
		Sorter: SorterConfig{
			BinaryDir:        "bin",
			TimeoutSeconds:   30,
			DebounceMs:       1000,
			Excludes:         []string{".git", "node_modules", "vendor", "*.min.js"},
			FailureThreshold: sorter.DefaultFailureThreshold,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.sortguard/logs",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// ServiceConfig converts the on-disk config into the sorter service's
// runtime configuration.
func (c SortguardConfig) ServiceConfig() sorter.ServiceConfig {
	return sorter.ServiceConfig{
		BinaryDir:        c.Sorter.BinaryDir,
		BinaryPath:       c.Sorter.BinaryPath,
		Timeout:          time.Duration(c.Sorter.TimeoutSeconds) * time.Second,
		DebounceWindow:   time.Duration(c.Sorter.DebounceMs) * time.Millisecond,
		Excludes:         c.Sorter.Excludes,
		FailureThreshold: c.Sorter.FailureThreshold,
	}
}
