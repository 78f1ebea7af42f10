// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command sortguard lints and fixes the sort order of list-like blocks
// in text files, backed by the bundled keep-sorted binary.
//
// Usage:
//
//	sortguard lint <file>...
//	sortguard fix --lines 10:14 <file>
//	sortguard fix-all [dir]
//	sortguard watch [dir]
//	sortguard serve --port 8080
package main

import "os"

func main() {
	os.Exit(Execute())
}
