// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// MarkdownRenderer renders assistant replies as terminal markdown.
// Rendering falls back to plain text whenever glamour is unavailable
// or fails, so a reply is never lost to a formatting error.
type MarkdownRenderer struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
	enabled  bool
}

// NewMarkdownRenderer creates a renderer with the given word-wrap width.
// When enabled is false, Render passes content through untouched.
func NewMarkdownRenderer(width int, enabled bool) *MarkdownRenderer {
	m := &MarkdownRenderer{width: width, enabled: enabled}
	m.rebuild()
	return m
}

// SetWidth updates the word-wrap width, rebuilding the renderer.
func (m *MarkdownRenderer) SetWidth(width int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if width == m.width {
		return
	}
	m.width = width
	m.rebuildLocked()
}

// Render converts markdown content to styled terminal output.
func (m *MarkdownRenderer) Render(content string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled || m.renderer == nil {
		return content
	}

	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	// Glamour pads with a trailing blank line that doubles up inside bubbles.
	return strings.TrimRight(rendered, "\n")
}

func (m *MarkdownRenderer) rebuild() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuildLocked()
}

func (m *MarkdownRenderer) rebuildLocked() {
	if !m.enabled {
		m.renderer = nil
		return
	}

	width := m.width
	if width < 20 {
		width = 20
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}
