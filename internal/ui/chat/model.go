// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the main conversation page of the TUI: sidebar with the
// conversation list, transcript viewport, and the question input.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/deenbot/deenbot-tui/internal/ledger"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/session"
	"github.com/deenbot/deenbot-tui/internal/ui/components"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
)

// focus identifies which pane receives keys.
type focus int

const (
	focusInput focus = iota
	focusSidebar
)

const sidebarWidth = 30

// Model is the chat page.
type Model struct {
	mgr    *session.Manager
	ledger *ledger.Ledger

	theme   styles.Theme
	strings locale.Strings
	loc     locale.Locale

	width  int
	height int

	viewport  viewport.Model
	input     textinput.Model
	spin      spinner.Model
	sidebar   components.Sidebar
	statusbar components.StatusBar

	renderer *glamour.TermRenderer

	// reveal state, keyed per message; only the newest answer animates
	reveals map[model.MessageKey]*components.Reveal

	revealInterval time.Duration
	revealMax      time.Duration

	focus         focus
	confirmDelete string // conversation ID pending deletion, "" when none
	userName      string
	connected     bool
}

// New creates the chat page.
func New(mgr *session.Manager, led *ledger.Ledger, theme styles.Theme, loc locale.Locale, revealInterval, revealMax time.Duration, userName string) Model {
	str := locale.T(loc)

	input := textinput.New()
	input.Placeholder = str.AskPlaceholder
	input.CharLimit = 4000
	input.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.GlamourStyle("dark")),
		glamour.WithWordWrap(80),
	)

	return Model{
		mgr:            mgr,
		ledger:         led,
		theme:          theme,
		strings:        str,
		loc:            loc,
		viewport:       viewport.New(80, 20),
		input:          input,
		spin:           spin,
		sidebar:        components.NewSidebar(sidebarWidth, theme, str),
		statusbar:      components.NewStatusBar(theme),
		renderer:       renderer,
		reveals:        make(map[model.MessageKey]*components.Reveal),
		revealInterval: revealInterval,
		revealMax:      revealMax,
		userName:       userName,
		connected:      true,
	}
}

// Init loads the conversation list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadConversationsCmd(m.mgr),
		textinput.Blink,
	)
}

// SetSize lays the page out for a new terminal size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - sidebarWidth - 2
	m.viewport.Height = height - 5
	m.input.Width = width - sidebarWidth - 8
	if m.renderer != nil {
		wrap := m.viewport.Width - 4
		if wrap < 20 {
			wrap = 20
		}
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithStandardStyle(styles.GlamourStyle("dark")),
			glamour.WithWordWrap(wrap),
		)
	}
}

// SetLocale re-localizes the page chrome.
func (m *Model) SetLocale(loc locale.Locale) {
	m.loc = loc
	m.strings = locale.T(loc)
	m.input.Placeholder = m.strings.AskPlaceholder
	m.sidebar.SetStrings(m.strings)
	m.mgr.SetLocale(loc)
}

// revealFor returns the reveal state of an assistant message, creating it
// on first sight. Messages already in the ledger render complete.
func (m *Model) revealFor(conversationID string, msg model.Message) *components.Reveal {
	if r, ok := m.reveals[msg.Key()]; ok {
		return r
	}
	seen := true
	if m.ledger != nil {
		seen = m.ledger.Seen(conversationID, msg.Key())
	}
	r := components.NewReveal(conversationID, msg.Key(), msg.Content, seen, m.revealInterval, m.revealMax)
	m.reveals[msg.Key()] = r
	return r
}

// markRevealed writes a finished reveal into the ledger.
func (m *Model) markRevealed(r *components.Reveal) {
	if m.ledger == nil {
		return
	}
	// Errors here only cost a replayed animation next time.
	_ = m.ledger.Mark(r.ConversationID, r.Key)
}
