// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/util"
)

// View renders the chat pane: header, history viewport, input area.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
	)
}

func (m Model) renderHeader() string {
	title := m.chat.Title
	if title == "" {
		title = "parley"
	}

	// UNICODE: cap by display width, titles can carry CJK text.
	maxTitle := m.width - 4
	if maxTitle < 10 {
		maxTitle = 10
	}
	title = util.TruncateWidth(title, maxTitle)

	return m.theme.Header.Width(m.width).Render(title)
}

func (m Model) renderInput() string {
	if m.state == StateSending {
		elapsed := time.Since(m.sendStart).Round(time.Second)
		line := m.spinner.View() + " " +
			m.theme.ThinkingText.Render("Waiting for reply... "+elapsed.String())
		return m.theme.InputContainer.Width(m.width).Render(line)
	}

	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}
