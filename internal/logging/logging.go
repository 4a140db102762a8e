// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the application-wide zerolog logger.
//
// The TUI owns stdout and stderr, so log output always goes to a file
// under the state directory. Level and destination come from the
// configuration's [log] section.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/config"
)

const defaultLogFile = "parley.log"

// New builds a logger from the log configuration. The returned closer
// flushes and releases the underlying file; callers defer it at exit.
func New(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	path := cfg.File
	if path == "" {
		dir, derr := config.StateDir()
		if derr != nil {
			return zerolog.Nop(), nil, fmt.Errorf("resolving log directory: %w", derr)
		}
		path = filepath.Join(dir, defaultLogFile)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating log directory: %w", err)
	}

	// SECURITY: logs can carry chat titles, keep them owner-readable.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(f).
		Level(level).
		With().
		Timestamp().
		Str("app", "parley").
		Logger()

	return logger, f, nil
}

// ParseLevel maps a configured level name to a zerolog level.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}
