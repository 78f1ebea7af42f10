// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"log/slog"
	"path/filepath"
)

// Bundled binary names per platform. The distribution ships one binary per
// supported platform under the install root.
const (
	binaryWindows     = "keep-sorted.exe"
	binaryDarwinARM64 = "keep-sorted-darwin-arm64"
	binaryDarwinAMD64 = "keep-sorted-darwin-amd64"
	binaryLinux       = "keep-sorted-linux-amd64"
)

// ResolveBinaryPath selects the bundled binary for a platform.
//
// Description:
//
//	Pure function mapping platform and architecture to the shipped binary
//	under rootDir. Computed once at construction and stored immutably;
//	there is no lazy caching on first call.
//
//	Windows gets the .exe, macOS gets an architecture-specific variant,
//	Linux gets the single supported variant. Any other platform falls
//	back to the Linux variant with a logged warning: best effort, not
//	guaranteed to work, but never an error.
//
// Inputs:
//
//	goos - Target platform (runtime.GOOS at the call site)
//	goarch - Target architecture (runtime.GOARCH at the call site)
//	rootDir - Directory containing the bundled binaries
//
// Outputs:
//
//	string - Absolute or root-relative path to the binary
func ResolveBinaryPath(goos, goarch, rootDir string) string {
	var name string
	switch goos {
	case "windows":
		name = binaryWindows
	case "darwin":
		if goarch == "arm64" {
			name = binaryDarwinARM64
		} else {
			name = binaryDarwinAMD64
		}
	case "linux":
		name = binaryLinux
	default:
		slog.Warn("No bundled sorter binary for platform, falling back to linux variant",
			slog.String("goos", goos),
			slog.String("goarch", goarch),
		)
		name = binaryLinux
	}
	return filepath.Join(rootDir, name)
}
