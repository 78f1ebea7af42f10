// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the sorter endpoints on a router group.
//
// Routes:
//
//	POST /sorter/lint        - Lint a document
//	POST /sorter/fix         - Fix a document
//	POST /sorter/edits       - Plan a workspace edit
//	GET  /sorter/diagnostics - Stored diagnostics (?uri= filters)
//	GET  /sorter/status      - Health snapshot
//	GET  /sorter/health      - Liveness probe
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	sorter := rg.Group("/sorter")
	{
		sorter.POST("/lint", h.HandleLint)
		sorter.POST("/fix", h.HandleFix)
		sorter.POST("/edits", h.HandleEdits)
		sorter.GET("/diagnostics", h.HandleDiagnostics)
		sorter.GET("/status", h.HandleStatus)
		sorter.GET("/health", h.HandleHealth)
	}
}
