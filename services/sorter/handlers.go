// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sorter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// =============================================================================
// HTTP HANDLERS
// =============================================================================

// LintRequest is the body of POST /v1/sorter/lint.
type LintRequest struct {
	URI  string `json:"uri" binding:"required"`
	Text string `json:"text"`
}

// LintResponse carries the diagnostics for one document.
type LintResponse struct {
	RequestID   string       `json:"request_id"`
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// FixRequest is the body of POST /v1/sorter/fix.
type FixRequest struct {
	URI  string `json:"uri" binding:"required"`
	Text string `json:"text"`

	// Range scopes the fix to a zero-based, end-exclusive line range.
	// Omitted means whole file.
	Range *Range `json:"range,omitempty"`
}

// FixResponse carries the outcome of a fix.
type FixResponse struct {
	RequestID string `json:"request_id"`
	URI       string `json:"uri"`

	// Changed is false when the document was already clean.
	Changed bool `json:"changed"`

	// NewText is the corrected content. Whole-file when WholeFile is
	// set, otherwise the replacement for Span.
	NewText   string `json:"new_text,omitempty"`
	WholeFile bool   `json:"whole_file"`

	// Span is the zero-based, end-exclusive range NewText replaces.
	// Present only for ranged fixes; it may be narrower than the
	// requested range.
	Span *Range `json:"span,omitempty"`
}

// EditsRequest is the body of POST /v1/sorter/edits.
type EditsRequest struct {
	URI  string `json:"uri" binding:"required"`
	Text string `json:"text"`

	Range *Range `json:"range,omitempty"`
}

// EditsResponse carries a planned workspace edit.
type EditsResponse struct {
	RequestID string `json:"request_id"`
	URI       string `json:"uri"`

	// Edit is nil when no diagnostic intersects the range or the
	// document was already clean.
	Edit *WorkspaceEdit `json:"edit,omitempty"`

	// Resolved lists the diagnostics the edit would settle.
	Resolved []Diagnostic `json:"resolved,omitempty"`
}

// DiagnosticsResponse lists the stored diagnostics, optionally for one URI.
type DiagnosticsResponse struct {
	RequestID   string                  `json:"request_id"`
	Diagnostics map[string][]Diagnostic `json:"diagnostics"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

// Handlers exposes the sorter service over HTTP.
//
// Thread Safety: Safe for concurrent use; all state lives in the service.
type Handlers struct {
	service *Service
}

// NewHandlers creates the handler set for a service.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleLint lints the posted document and returns its diagnostics.
func (h *Handlers) HandleLint(c *gin.Context) {
	requestID := uuid.NewString()

	var req LintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{RequestID: requestID, Error: err.Error()})
		return
	}

	diags, err := h.service.LintDocument(c.Request.Context(), Document{URI: req.URI, Text: req.Text})
	if err != nil {
		h.writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, LintResponse{
		RequestID:   requestID,
		URI:         req.URI,
		Diagnostics: diags,
	})
}

// HandleFix fixes the posted document, whole-file or range-scoped.
func (h *Handlers) HandleFix(c *gin.Context) {
	requestID := uuid.NewString()

	var req FixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{RequestID: requestID, Error: err.Error()})
		return
	}
	if req.Range != nil && req.Range.Start < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{RequestID: requestID, Error: "range start must be non-negative"})
		return
	}

	res, err := h.service.Client().Fix(c.Request.Context(), Document{URI: req.URI, Text: req.Text}, req.Range)
	if err != nil {
		h.writeError(c, requestID, err)
		return
	}

	resp := FixResponse{RequestID: requestID, URI: req.URI}
	if res != nil {
		resp.Changed = true
		resp.NewText = res.NewText
		resp.WholeFile = res.WholeFile
		resp.Span = res.Span
	}
	c.JSON(http.StatusOK, resp)
}

// HandleEdits plans a workspace edit for the posted document.
func (h *Handlers) HandleEdits(c *gin.Context) {
	requestID := uuid.NewString()

	var req EditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{RequestID: requestID, Error: err.Error()})
		return
	}

	plan, err := h.service.PlanEdit(c.Request.Context(), Document{URI: req.URI, Text: req.Text}, req.Range)
	if err != nil {
		h.writeError(c, requestID, err)
		return
	}

	resp := EditsResponse{RequestID: requestID, URI: req.URI}
	if plan != nil {
		resp.Edit = &plan.Edit
		resp.Resolved = plan.Diagnostics
		// The HTTP caller applies the edit itself; the plan is
		// settled here so the diagnostics retire immediately.
		h.service.Planner().Complete(plan)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleDiagnostics returns the stored diagnostics, filtered by ?uri=.
func (h *Handlers) HandleDiagnostics(c *gin.Context) {
	requestID := uuid.NewString()
	store := h.service.Store()

	out := make(map[string][]Diagnostic)
	if uri := c.Query("uri"); uri != "" {
		out[uri] = store.Get(uri)
	} else {
		for _, uri := range store.URIs() {
			out[uri] = store.Get(uri)
		}
	}

	c.JSON(http.StatusOK, DiagnosticsResponse{RequestID: requestID, Diagnostics: out})
}

// HandleStatus returns the service health snapshot.
func (h *Handlers) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status())
}

// HandleHealth is the liveness probe.
func (h *Handlers) HandleHealth(c *gin.Context) {
	status := h.service.Status()
	if status.Disabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps a sorter error to an HTTP status.
func (h *Handlers) writeError(c *gin.Context, requestID string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, ErrCircuitOpen):
		status = http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, ErrProtocol), errors.Is(err, ErrParse), errors.Is(err, ErrSpawn):
		status = http.StatusBadGateway
	}

	slog.Error("Request failed",
		slog.String("request_id", requestID),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)
	c.JSON(status, ErrorResponse{RequestID: requestID, Error: err.Error()})
}
