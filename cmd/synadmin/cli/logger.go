// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger commands write
// diagnostics to. On a terminal stderr it uses slog.TextHandler for
// people; piped or redirected, it uses slog.JSONHandler for log
// collectors. Results always go to stdout, never through the logger.
//
// Callers scope the logger with command context via With():
//
//	logger = logger.With("command", "room/delete", "room_id", roomID.String())
func NewCommandLogger(level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
