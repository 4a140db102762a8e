// parley - A terminal chat client with a remote AI backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/auth"
	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/session"
	"github.com/jeranaias/parley-tui/internal/storage"
	authui "github.com/jeranaias/parley-tui/internal/ui/auth"
	"github.com/jeranaias/parley-tui/internal/ui/chat"
	"github.com/jeranaias/parley-tui/internal/ui/components"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async config reload notifications
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func main() {
	// The TUI takes over the terminal, refuse to start on a pipe.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "parley requires an interactive terminal")
		os.Exit(1)
	}

	cfg := config.Global()

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger = zerolog.Nop()
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	logger.Info().
		Str("version", Version).
		Str("commit", GitCommit).
		Str("built", BuildDate).
		Msg("starting parley")

	theme := styles.NewThemeWithMode(cfg.UI.Theme)

	authStore, err := auth.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	snap, err := storage.NewSnapshotStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.Server.BaseURL, authStore.Token, logger)

	store := session.NewStore()
	// Preload the snapshot so the previous session is visible before
	// the first fetch completes.
	if chats := snap.Load(); len(chats) > 0 {
		store.ResetAll(chats)
	}

	reconciler := session.NewReconciler(client, store, snap, logger)
	authMgr := auth.NewManager(client, authStore, snap, logger)

	m := newAppModel(theme, cfg, reconciler, authMgr, logger)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Config hot reload: edits to the TOML file apply without restart.
	if tomlPath, perr := config.ConfigPathTOML(); perr == nil {
		watcher, werr := config.NewWatcher(tomlPath, time.Second, func(c *config.Config) {
			programMu.Lock()
			ref := programRef
			programMu.Unlock()
			if ref != nil {
				ref.Send(configReloadedMsg{cfg: c})
			}
		})
		if werr == nil {
			if werr = watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}
		if werr != nil {
			logger.Warn().Err(werr).Msg("config watcher unavailable")
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running parley: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// appState represents the top-level application state.
type appState int

const (
	stateAuth appState = iota // Login/signup form
	stateChat                 // Main sidebar + chat layout
)

// appModel is the root Bubble Tea model. It owns the reconciler and
// the auth manager; the chat pane and auth form are pure views.
type appModel struct {
	state appState

	theme *styles.Theme
	cfg   *config.Config
	log   zerolog.Logger

	width  int
	height int

	reconciler *session.Reconciler
	authMgr    *auth.Manager

	authForm authui.Model
	chatPane chat.Model
	sidebar  *components.Sidebar
	toasts   *components.ToastManager
	markdown *components.MarkdownRenderer

	// pendingDeleteID holds the chat awaiting delete confirmation.
	pendingDeleteID string

	loadingChats bool
}

func newAppModel(theme *styles.Theme, cfg *config.Config, rec *session.Reconciler, authMgr *auth.Manager, log zerolog.Logger) appModel {
	markdown := components.NewMarkdownRenderer(80, cfg.UI.Markdown)

	m := appModel{
		state:      stateAuth,
		theme:      theme,
		cfg:        cfg,
		log:        log,
		reconciler: rec,
		authMgr:    authMgr,
		authForm:   authui.New(theme),
		chatPane:   chat.New(theme, markdown),
		sidebar:    components.NewSidebar(theme),
		toasts:     components.NewToastManager(),
		markdown:   markdown,
	}

	if authMgr.LoggedIn() {
		m.state = stateChat
	}
	m.refreshChat()

	return m
}

// Init starts the toast ticker and, when already logged in, the
// initial chat fetch.
func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{components.ToastTickCmd()}
	if m.state == stateChat {
		cmds = append(cmds, m.chatPane.Init(), m.fetchChatsCmd())
	} else {
		cmds = append(cmds, m.authForm.Init())
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// ASYNC MESSAGES
// =============================================================================

type chatsLoadedMsg struct{ err error }
type sendDoneMsg struct{ err error }
type deleteDoneMsg struct{ err error }
type authDoneMsg struct{ err error }
type configReloadedMsg struct{ cfg *config.Config }

// =============================================================================
// ASYNC COMMANDS
// =============================================================================

func (m appModel) fetchChatsCmd() tea.Cmd {
	rec := m.reconciler
	timeout := m.cfg.Server.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return chatsLoadedMsg{err: rec.FetchInitialChats(ctx)}
	}
}

func (m appModel) sendCmd(content string) tea.Cmd {
	rec := m.reconciler
	timeout := m.cfg.Server.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := rec.SendMessage(ctx, content)
		return sendDoneMsg{err: err}
	}
}

func (m appModel) deleteCmd(id string) tea.Cmd {
	rec := m.reconciler
	timeout := m.cfg.Server.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return deleteDoneMsg{err: rec.DeleteChat(ctx, id)}
	}
}

func (m appModel) authCmd(mode authui.Mode, email, password string) tea.Cmd {
	mgr := m.authMgr
	timeout := m.cfg.Server.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var err error
		if mode == authui.ModeSignup {
			err = mgr.Signup(ctx, email, password)
		} else {
			err = mgr.Login(ctx, email, password)
		}
		return authDoneMsg{err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	case configReloadedMsg:
		m.cfg = msg.cfg
		m.toasts.AddStatus("Configuration reloaded")
		return m, nil

	case authui.SubmitMsg:
		m.authForm.SetBusy(true)
		return m, m.authCmd(msg.Mode, msg.Email, msg.Password)

	case authDoneMsg:
		return m.handleAuthDone(msg)

	case chat.SubmitMsg:
		var cmd tea.Cmd
		m.chatPane, cmd = m.chatPane.Update(chat.SendStartedMsg{})
		return m, tea.Batch(cmd, m.sendCmd(msg.Content))

	case sendDoneMsg:
		return m.handleSendDone(msg)

	case chatsLoadedMsg:
		m.loadingChats = false
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("initial chat fetch failed")
			m.toasts.AddError("Couldn't load chats from the server")
		}
		m.refreshChat()
		return m, nil

	case deleteDoneMsg:
		return m.handleDeleteDone(msg)
	}

	return m.forward(msg)
}

func (m appModel) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.state == stateAuth {
		m.authForm, cmd = m.authForm.Update(msg)
		return m, cmd
	}
	m.chatPane, cmd = m.chatPane.Update(msg)
	return m, cmd
}

func (m appModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	m.sidebar.SetSize(m.sidebarWidth(), m.height-1)

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.authForm, cmd = m.authForm.Update(msg)
	cmds = append(cmds, cmd)

	paneMsg := tea.WindowSizeMsg{Width: m.chatWidth(), Height: m.height - 1}
	m.chatPane, cmd = m.chatPane.Update(paneMsg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	// Emergency exit works in every state.
	if keyStr == "ctrl+q" || keyStr == "ctrl+c" {
		return m, tea.Quit
	}

	if keyStr == "ctrl+x" && m.toasts.HasToasts() {
		m.toasts.DismissNewest()
		return m, nil
	}

	if m.state == stateAuth {
		var cmd tea.Cmd
		m.authForm, cmd = m.authForm.Update(msg)
		return m, cmd
	}

	// Delete confirmation swallows everything but y/n/esc.
	if m.pendingDeleteID != "" {
		switch keyStr {
		case "y", "Y":
			id := m.pendingDeleteID
			m.pendingDeleteID = ""
			m.sidebar.PendingDeleteID = ""
			return m, m.deleteCmd(id)
		case "n", "N", "esc":
			m.pendingDeleteID = ""
			m.sidebar.PendingDeleteID = ""
			return m, nil
		}
		return m, nil
	}

	switch keyStr {
	case "ctrl+n":
		m.reconciler.CreateNewChat()
		m.refreshChat()
		return m, nil

	case "ctrl+j":
		m.selectAdjacent(1)
		return m, nil

	case "ctrl+k":
		m.selectAdjacent(-1)
		return m, nil

	case "ctrl+d":
		if id := m.reconciler.Store().CurrentID(); id != "" {
			m.pendingDeleteID = id
			m.sidebar.PendingDeleteID = id
		}
		return m, nil

	case "ctrl+o":
		return m.handleLogout()
	}

	var cmd tea.Cmd
	m.chatPane, cmd = m.chatPane.Update(msg)
	return m, cmd
}

func (m appModel) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Msg("authentication failed")
		m.authForm.SetError(friendlyAuthError(msg.err))
		return m, nil
	}

	m.state = stateChat
	m.loadingChats = true
	m.refreshChat()
	return m, tea.Batch(m.chatPane.Init(), m.fetchChatsCmd())
}

func (m appModel) handleSendDone(msg sendDoneMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.chatPane, cmd = m.chatPane.Update(chat.SendFinishedMsg{Err: msg.err})
	m.refreshChat()

	if msg.err != nil {
		switch {
		case msg.err == session.ErrEmptyMessage:
			// Blank input is silently dropped.
		case msg.err == session.ErrSendInFlight:
			m.toasts.AddWarning("A message is already being sent")
		case session.IsNetwork(msg.err):
			m.toasts.AddError("Couldn't reach the server, your message was not sent")
		default:
			m.toasts.AddError("Send failed: " + msg.err.Error())
		}
	}

	return m, cmd
}

func (m appModel) handleDeleteDone(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	m.refreshChat()

	if msg.err != nil {
		switch {
		case msg.err == session.ErrRemoteNotFound:
			// The chat is kept, the server never acknowledged the delete.
			m.toasts.AddWarning("Server doesn't know this chat, kept locally")
		case session.IsAmbiguous(msg.err):
			// The chat is kept, the server may or may not have deleted it.
			m.toasts.AddWarning("Delete may not have completed, chat kept locally")
		case session.IsNetwork(msg.err):
			m.toasts.AddError("Couldn't reach the server, chat not deleted")
		default:
			m.toasts.AddError("Delete failed: " + msg.err.Error())
		}
		return m, nil
	}

	m.toasts.AddSuccess("Chat deleted")
	return m, nil
}

func (m appModel) handleLogout() (tea.Model, tea.Cmd) {
	if err := m.authMgr.Logout(); err != nil {
		m.log.Warn().Err(err).Msg("logout cleanup failed")
	}
	m.reconciler.Store().ResetAll(nil)
	m.state = stateAuth
	m.authForm = authui.New(m.theme)

	// Carry the window size into the fresh form.
	var cmd tea.Cmd
	m.authForm, cmd = m.authForm.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	return m, tea.Batch(cmd, m.authForm.Init())
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// selectAdjacent moves the current chat pointer within the sidebar list.
func (m *appModel) selectAdjacent(delta int) {
	store := m.reconciler.Store()
	chats := store.List()
	if len(chats) < 2 {
		return
	}

	currentID := store.CurrentID()
	idx := 0
	for i, c := range chats {
		if c.ID == currentID {
			idx = i
			break
		}
	}

	idx += delta
	if idx < 0 {
		idx = len(chats) - 1
	}
	if idx >= len(chats) {
		idx = 0
	}

	m.reconciler.SelectChat(chats[idx].ID)
	m.refreshChat()
}

func (m *appModel) refreshChat() {
	if current, ok := m.reconciler.Store().Current(); ok {
		m.chatPane.SetChat(current)
	}
}

func (m appModel) showSidebar() bool {
	return m.theme.GetLayoutMode() == styles.LayoutWide
}

func (m appModel) sidebarWidth() int {
	if !m.showSidebar() {
		return 0
	}
	w := m.cfg.UI.SidebarWidth
	if w < 16 {
		w = 16
	}
	if w > m.width/2 {
		w = m.width / 2
	}
	return w
}

func (m appModel) chatWidth() int {
	w := m.width - m.sidebarWidth()
	if w < 1 {
		w = 1
	}
	return w
}

// =============================================================================
// VIEW
// =============================================================================

func (m appModel) View() string {
	var base string
	if m.state == stateAuth {
		base = m.authForm.View()
	} else {
		base = m.renderChatLayout()
	}

	if toasts := m.toasts.Toasts(); len(toasts) > 0 {
		overlay := components.RenderToastStack(toasts, m.width, m.height)
		return m.overlayToasts(base, overlay)
	}

	return base
}

func (m appModel) renderChatLayout() string {
	store := m.reconciler.Store()

	var body string
	if m.showSidebar() {
		sidebarView := m.sidebar.View(store.List(), store.CurrentID())
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebarView, m.chatPane.View())
	} else {
		body = m.chatPane.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

func (m appModel) renderStatusBar() string {
	var left string
	if email := m.authMgr.Email(); email != "" {
		left = email
	} else {
		left = "signed in"
	}
	if m.loadingChats {
		left += "  loading chats..."
	}

	hints := m.sidebar.FooterHints() + "  " +
		m.theme.ShortcutKey.Render("ctrl+o") + m.theme.ShortcutDesc.Render(" logout") + "  " +
		m.theme.ShortcutKey.Render("ctrl+q") + m.theme.ShortcutDesc.Render(" quit")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(hints) - 2
	if gap < 1 {
		gap = 1
	}

	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + hints)
}

// overlayToasts composites the toast stack over the base view without
// blocking interaction with the rest of the screen.
func (m appModel) overlayToasts(baseView, toastView string) string {
	baseLines := strings.Split(baseView, "\n")
	toastLines := strings.Split(toastView, "\n")

	toastHeight := len(toastLines)
	startRow := m.height - toastHeight - 2
	if startRow < 0 {
		startRow = 0
	}

	result := make([]string, len(baseLines))
	for i, baseLine := range baseLines {
		toastLineIdx := i - startRow
		if toastLineIdx < 0 || toastLineIdx >= len(toastLines) {
			result[i] = baseLine
			continue
		}

		toastLine := strings.TrimRight(toastLines[toastLineIdx], " ")
		toastLine = strings.TrimLeft(toastLine, " ")
		if lipgloss.Width(toastLine) == 0 {
			result[i] = baseLine
			continue
		}

		baseWidth := lipgloss.Width(baseLine)
		toastWidth := lipgloss.Width(toastLine)
		room := m.width - toastWidth - 1

		if baseWidth < room {
			baseLine += strings.Repeat(" ", room-baseWidth)
		} else if baseWidth > room && room > 0 {
			baseLine = runewidth.Truncate(baseLine, room, "")
		}

		result[i] = baseLine + toastLine
	}

	return strings.Join(result, "\n")
}

func friendlyAuthError(err error) string {
	switch {
	case err == nil:
		return ""
	case session.IsNetwork(err):
		return "Couldn't reach the server"
	default:
		return "Sign-in failed, check your email and password"
	}
}
