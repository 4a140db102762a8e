// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat pane for the TUI: the message history
// viewport, the input line, and the waiting spinner.
package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/ui/components"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat pane.
type State int

const (
	StateReady   State = iota // Ready for input
	StateSending              // Waiting for the backend reply
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat pane. It is purely a
// presentation layer: sends happen in the root model, which pushes the
// updated chat back in through SetChat.
type Model struct {
	state State

	theme *styles.Theme

	width  int
	height int

	chat model.Chat

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	messageList *components.MessageList

	sendStart time.Time
}

// New creates a chat pane. The markdown renderer may be nil to render
// assistant replies as plain text.
func New(theme *styles.Theme, markdown *components.MarkdownRenderer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII frames render everywhere, including Windows consoles.
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	return Model{
		state:       StateReady,
		theme:       theme,
		viewport:    vp,
		input:       ti,
		spinner:     sp,
		messageList: components.NewMessageList(theme, markdown),
	}
}

// Init initializes the chat pane.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SendStartedMsg:
		m.state = StateSending
		m.sendStart = time.Now()
		m.input.Blur()
		return m, m.spinner.Tick

	case SendFinishedMsg:
		m.state = StateReady
		m.input.Focus()
		return m, textinput.Blink

	case spinner.TickMsg:
		if m.state == StateSending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmds []tea.Cmd
	if m.state == StateReady {
		var inputCmd tea.Cmd
		m.input, inputCmd = m.input.Update(msg)
		cmds = append(cmds, inputCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Layout: header + viewport + input area + status bar. The reserved
	// heights are conservative so the viewport never overflows.
	const (
		headerHeight    = 2
		inputAreaHeight = 3
		statusBarHeight = 2
	)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	viewportWidth := m.width
	if viewportWidth < 1 {
		viewportWidth = 1
	}

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight

	const promptLen = 2 // "> "
	inputWidth := m.width - 6 - promptLen
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.messageList.SetWidth(viewportWidth)
	m.refreshViewport()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.state != StateReady {
			return m, nil
		}
		content := strings.TrimSpace(m.input.Value())
		if content == "" {
			// Blank input is dropped without feedback.
			m.input.Reset()
			return m, nil
		}
		m.input.Reset()
		return m, func() tea.Msg { return SubmitMsg{Content: content} }

	case "pgup", "ctrl+u":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil

	case "up":
		m.viewport.LineUp(1)
		return m, nil

	case "down":
		m.viewport.LineDown(1)
		return m, nil

	case "home":
		m.viewport.GotoTop()
		return m, nil

	case "end":
		m.viewport.GotoBottom()
		return m, nil
	}

	if m.state == StateReady {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// =============================================================================
// EXTERNAL STATE
// =============================================================================

// SetChat replaces the displayed chat and scrolls to the latest message.
func (m *Model) SetChat(chat model.Chat) {
	m.chat = chat
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// Chat returns the displayed chat.
func (m *Model) Chat() model.Chat {
	return m.chat
}

// State returns the current pane state.
func (m *Model) State() State {
	return m.state
}

// InputValue returns the current input text.
func (m *Model) InputValue() string {
	return m.input.Value()
}

func (m *Model) refreshViewport() {
	m.messageList.SetMessages(m.chat.Messages)
	m.viewport.SetContent(m.messageList.View())
}
