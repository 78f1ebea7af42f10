// Copyright (C) 2025 Sortguard Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/sortguard/sortguard/cmd/sortguard/config"
	"github.com/sortguard/sortguard/services/sorter"
)

// runServe exposes the sorter service over HTTP until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		OutputError(jsonOutput, "serve failed", err)
		return &exitError{code: CLIExitError}
	}

	if logLevel == "debug" || config.Global.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")
	sorter.RegisterRoutes(v1, sorter.NewHandlers(svc))

	port := servePort
	if port == 0 {
		port = config.Global.Server.Port
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", slog.Int("port", port))
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			OutputError(jsonOutput, "server failed", err)
			return &exitError{code: CLIExitError}
		}
	case <-sigCh:
		slog.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			OutputError(jsonOutput, "shutdown failed", err)
			return &exitError{code: CLIExitError}
		}
	}
	return nil
}
