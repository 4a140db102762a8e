// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the login and signup form for the TUI.
package auth

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// FORM MODES AND MESSAGES
// =============================================================================

// Mode selects between the login and signup variants of the form.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

// SubmitMsg is emitted when the user submits valid credentials.
// The root model performs the actual authentication.
type SubmitMsg struct {
	Mode     Mode
	Email    string
	Password string
}

// focus indices for the form fields
const (
	focusEmail = iota
	focusPassword
	focusSubmit
	focusCount
)

// =============================================================================
// FORM MODEL
// =============================================================================

// Model is the Bubble Tea model for the auth form.
type Model struct {
	theme *styles.Theme

	mode  Mode
	focus int

	email    textinput.Model
	password textinput.Model

	// errText shows the last authentication failure, cleared on input.
	errText string

	busy bool

	width  int
	height int
}

// New creates an auth form starting in login mode.
func New(theme *styles.Theme) Model {
	email := textinput.New()
	email.Prompt = ""
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Prompt = ""
	password.Placeholder = "password"
	password.CharLimit = 128
	// SECURITY: never echo the password.
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return Model{
		theme:    theme,
		mode:     ModeLogin,
		email:    email,
		password: password,
	}
}

// Init initializes the form.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % focusCount
		return m.applyFocus()

	case "shift+tab", "up":
		m.focus--
		if m.focus < 0 {
			m.focus = focusCount - 1
		}
		return m.applyFocus()

	case "ctrl+s":
		// Toggle between login and signup.
		if m.mode == ModeLogin {
			m.mode = ModeSignup
		} else {
			m.mode = ModeLogin
		}
		m.errText = ""
		return m, nil

	case "enter":
		if m.focus == focusSubmit || m.focus == focusPassword {
			return m.submit()
		}
		m.focus++
		return m.applyFocus()
	}

	m.errText = ""
	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) applyFocus() (Model, tea.Cmd) {
	m.email.Blur()
	m.password.Blur()

	switch m.focus {
	case focusEmail:
		m.email.Focus()
		return m, textinput.Blink
	case focusPassword:
		m.password.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	if email == "" || password == "" {
		m.errText = "Email and password are required"
		return m, nil
	}

	mode := m.mode
	return m, func() tea.Msg {
		return SubmitMsg{Mode: mode, Email: email, Password: password}
	}
}

// =============================================================================
// EXTERNAL STATE
// =============================================================================

// SetBusy locks the form while an authentication request is in flight.
func (m *Model) SetBusy(busy bool) {
	m.busy = busy
}

// SetError displays an authentication failure under the form.
func (m *Model) SetError(text string) {
	m.errText = text
	m.busy = false
}

// Mode returns the current form mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the form centered on screen.
func (m Model) View() string {
	title := "Log in to parley"
	action := "Log in"
	toggleHint := "ctrl+s: sign up instead"
	if m.mode == ModeSignup {
		title = "Create a parley account"
		action = "Sign up"
		toggleHint = "ctrl+s: log in instead"
	}

	var b strings.Builder
	b.WriteString(m.theme.AuthTitle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.theme.AuthLabel.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.AuthLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	button := m.theme.AuthButton
	if m.focus == focusSubmit {
		button = m.theme.AuthButtonFocus
	}
	if m.busy {
		b.WriteString(m.theme.AuthHint.Render("Signing in..."))
	} else {
		b.WriteString(button.Render(action))
	}
	b.WriteString("\n")

	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.RenderError(m.errText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.AuthHint.Render(toggleHint))

	box := m.theme.AuthBox.Render(b.String())

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
