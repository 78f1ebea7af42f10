// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"path/filepath"
	"testing"
)

func TestResolveBinaryPath(t *testing.T) {
	cases := []struct {
		name   string
		goos   string
		goarch string
		want   string
	}{
		{"windows", "windows", "amd64", "keep-sorted.exe"},
		{"darwin arm64", "darwin", "arm64", "keep-sorted-darwin-arm64"},
		{"darwin amd64", "darwin", "amd64", "keep-sorted-darwin-amd64"},
		{"linux", "linux", "amd64", "keep-sorted-linux-amd64"},
		{"unknown platform falls back", "plan9", "386", "keep-sorted-linux-amd64"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveBinaryPath(tc.goos, tc.goarch, "bin")
			want := filepath.Join("bin", tc.want)
			if got != want {
				t.Errorf("ResolveBinaryPath(%s, %s) = %q, want %q", tc.goos, tc.goarch, got, want)
			}
		})
	}
}
