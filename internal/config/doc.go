// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for parley.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation. A Watcher can
// reload the configuration when the file changes on disk.
//
// # Key Types
//
//   - Config: main configuration structure
//   - ServerConfig: backend endpoint and timeout
//   - UIConfig: theme, markdown rendering, sidebar width
//   - LogConfig: log level and file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (PARLEY_*)
//   - ~/.parley/config.toml
//   - ~/.parley/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	baseURL := cfg.Server.BaseURL
package config
