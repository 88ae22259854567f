// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
)

// newLogger creates the structured logger for one invocation. When
// stderr is a terminal it uses slog.TextHandler for human-readable
// output; otherwise slog.JSONHandler for machine-parseable records.
// Debug records appear only with --verbose.
func newLogger(w io.Writer, terminal, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handlerOptions := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if terminal {
		handler = slog.NewTextHandler(w, handlerOptions)
	} else {
		handler = slog.NewJSONHandler(w, handlerOptions)
	}
	return slog.New(handler).With("command", "sysver")
}
