// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL == "" {
		t.Error("default base URL should not be empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestServerTimeout(t *testing.T) {
	if got := Default().Server.Timeout(); got != 60*time.Second {
		t.Errorf("default timeout = %v, want 60s", got)
	}

	custom := ServerConfig{TimeoutSecs: 5}
	if got := custom.Timeout(); got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
}

func TestLoadFromPathTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "1"

[server]
base_url = "https://chat.example.com"
timeout_secs = 30

[ui]
theme = "dark"
markdown = false
sidebar_width = 32

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.BaseURL != "https://chat.example.com" {
		t.Errorf("base_url = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("timeout_secs = %d", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Theme != "dark" || cfg.UI.Markdown {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadFromPathJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"server":{"base_url":"http://localhost:9000"},"ui":{"theme":"light"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:9000" {
		t.Errorf("base_url = %q", cfg.Server.BaseURL)
	}
	// Missing fields fall back to defaults.
	if cfg.Server.TimeoutSecs != Default().Server.TimeoutSecs {
		t.Errorf("timeout_secs = %d, want default", cfg.Server.TimeoutSecs)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.Server.BaseURL = "not a url" }},
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://example.com" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARLEY_API_URL", "https://override.example.com")
	t.Setenv("PARLEY_LOG_LEVEL", "trace")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "https://override.example.com" {
		t.Errorf("base_url = %q", cfg.Server.BaseURL)
	}
	if cfg.Log.Level != "trace" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.UI.Theme = "light"
	cfg.Server.BaseURL = "https://saved.example.com"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.UI.Theme != "light" || loaded.Server.BaseURL != "https://saved.example.com" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestGlobalSetAndReset(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	// Trigger the once-guarded initial load before overriding.
	_ = Global()

	cfg := Default()
	cfg.UI.SidebarWidth = 44
	SetGlobal(cfg)

	if Global().UI.SidebarWidth != 44 {
		t.Error("SetGlobal not visible through Global")
	}
}
