// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
	"github.com/jeranaias/parley-tui/internal/util"
)

// =============================================================================
// SIDEBAR
// =============================================================================

// Sidebar renders the chat list. Chats arrive newest-first from the
// session store; the sidebar only decides presentation.
type Sidebar struct {
	theme *styles.Theme

	width  int
	height int

	// PendingDeleteID is the chat awaiting delete confirmation, if any.
	PendingDeleteID string
}

// NewSidebar creates a sidebar bound to a theme.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{theme: theme}
}

// SetSize updates the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Width returns the configured sidebar width.
func (s *Sidebar) Width() int {
	return s.width
}

// View renders the chat list with the current chat highlighted.
func (s *Sidebar) View(chats []model.Chat, currentID string) string {
	inner := s.width - 4
	if inner < 8 {
		inner = 8
	}

	var b strings.Builder
	b.WriteString(s.theme.SidebarTitle.Render("Chats"))
	b.WriteString("\n\n")

	if len(chats) == 0 {
		b.WriteString(s.theme.ChatItemMeta.Render("No chats yet"))
	}

	// Reserve two lines for the title block and one for the current
	// chat's preview line.
	visible := s.height - 4
	if visible < 1 {
		visible = 1
	}

	for i, chat := range chats {
		if i >= visible {
			break
		}

		// UNICODE: truncate by display width so CJK titles line up.
		label := util.TruncateWidth(chat.Title, inner)

		switch {
		case chat.ID == s.PendingDeleteID:
			b.WriteString(s.theme.DeleteConfirmText.Render("Delete? y/n"))
		case chat.ID == currentID:
			b.WriteString(s.theme.ChatItemSelected.Render(label))
			if last, ok := chat.LastMessage(); ok {
				b.WriteString("\n")
				b.WriteString(s.theme.ChatItemMeta.Render(util.TruncateWidth(last.Preview(inner), inner)))
			}
		case chat.IsLocal:
			b.WriteString(s.theme.ChatItemDraft.Render(label))
		default:
			b.WriteString(s.theme.ChatItem.Render(label))
		}
		b.WriteString("\n")
	}

	return s.theme.Sidebar.
		Width(s.width).
		Height(s.height).
		Render(b.String())
}

// FooterHints renders the sidebar key hints for the status bar.
func (s *Sidebar) FooterHints() string {
	key := s.theme.ShortcutKey
	desc := s.theme.ShortcutDesc
	parts := []string{
		key.Render("ctrl+n") + desc.Render(" new"),
		key.Render("ctrl+j/k") + desc.Render(" switch"),
		key.Render("ctrl+d") + desc.Render(" delete"),
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(parts, "  "))
}
