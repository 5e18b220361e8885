// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the top-level bubbletea program: it routes between the
// auth, chat, upload, and lessons pages and owns the toast stack.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/auth"
	"github.com/deenbot/deenbot-tui/internal/config"
	"github.com/deenbot/deenbot-tui/internal/ledger"
	"github.com/deenbot/deenbot-tui/internal/lessons"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/session"
	"github.com/deenbot/deenbot-tui/internal/ui/authview"
	"github.com/deenbot/deenbot-tui/internal/ui/chat"
	"github.com/deenbot/deenbot-tui/internal/ui/components"
	"github.com/deenbot/deenbot-tui/internal/ui/lessonsview"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
	"github.com/deenbot/deenbot-tui/internal/ui/uploadview"
	"github.com/deenbot/deenbot-tui/internal/upload"
)

// page identifies the active screen.
type page int

const (
	pageAuth page = iota
	pageChat
	pageUpload
	pageLessons
)

type globalKeyMap struct {
	Quit         key.Binding
	Logout       key.Binding
	GotoChat     key.Binding
	GotoUpload   key.Binding
	GotoLessons  key.Binding
	ToggleLocale key.Binding
}

func defaultGlobalKeys() globalKeyMap {
	return globalKeyMap{
		Quit:         key.NewBinding(key.WithKeys("ctrl+c")),
		Logout:       key.NewBinding(key.WithKeys("ctrl+q")),
		GotoChat:     key.NewBinding(key.WithKeys("ctrl+b")),
		GotoUpload:   key.NewBinding(key.WithKeys("ctrl+u")),
		GotoLessons:  key.NewBinding(key.WithKeys("ctrl+l")),
		ToggleLocale: key.NewBinding(key.WithKeys("ctrl+g")),
	}
}

// bootstrapMsg is the result of the startup whoami check.
type bootstrapMsg struct {
	user     model.User
	loggedIn bool
}

// Model is the application shell.
type Model struct {
	cfg *config.Config
	loc locale.Locale

	sessionMgr *session.Manager
	authMgr    *auth.Manager
	ledger     *ledger.Ledger

	authPage    authview.Model
	chatPage    chat.Model
	uploadPage  uploadview.Model
	lessonsPage lessonsview.Model

	toasts *components.ToastManager
	theme  styles.Theme

	page     page
	loggedIn bool
	width    int
	height   int
}

// Deps bundles the services the shell composes.
type Deps struct {
	Config     *config.Config
	Client     *api.Client
	AuthMgr    *auth.Manager
	SessionMgr *session.Manager
	Ledger     *ledger.Ledger
}

// New builds the application shell.
func New(deps Deps) Model {
	loc := locale.Parse(deps.Config.UI.Locale)
	theme := styles.NewTheme(deps.Config.UI.Theme)

	interval := time.Duration(deps.Config.Chat.RevealIntervalMs) * time.Millisecond
	maxDur := time.Duration(deps.Config.Chat.RevealMaxSeconds) * time.Second

	return Model{
		cfg:         deps.Config,
		loc:         loc,
		sessionMgr:  deps.SessionMgr,
		authMgr:     deps.AuthMgr,
		ledger:      deps.Ledger,
		authPage:    authview.New(deps.AuthMgr, theme, loc),
		chatPage:    chat.New(deps.SessionMgr, deps.Ledger, theme, loc, interval, maxDur, ""),
		uploadPage:  uploadview.New(upload.NewSubmitter(deps.Client), theme, loc),
		lessonsPage: lessonsview.New(lessons.NewBrowser(deps.Client), theme, loc),
		toasts:      components.NewToastManager(),
		theme:       theme,
		page:        pageAuth,
	}
}

// Init validates the session cookie before showing any page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.bootstrapCmd(),
		m.authPage.Init(),
	)
}

func (m Model) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		user, ok := m.authMgr.Bootstrap(context.Background())
		return bootstrapMsg{user: user, loggedIn: ok}
	}
}

// Update routes messages to the shell and the active page.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.authPage.SetSize(msg.Width, msg.Height)
		m.chatPage.SetSize(msg.Width, msg.Height)
		m.uploadPage.SetSize(msg.Width, msg.Height)
		m.lessonsPage.SetSize(msg.Width, msg.Height)
		return m, nil

	case bootstrapMsg:
		if msg.loggedIn {
			return m.enterChat(msg.user)
		}
		m.page = pageAuth
		return m, nil

	case authview.LoggedInMsg:
		return m.enterChat(msg.User)

	case authview.ErrorMsg:
		return m.toast(msg.Message)
	case chat.ToastMsg:
		return m.toast(msg.Message)
	case uploadview.ErrorMsg:
		return m.toast(msg.Message)
	case lessonsview.ErrorMsg:
		return m.toast(msg.Message)

	case uploadview.DoneMsg:
		m.page = pageChat
		var cmds []tea.Cmd
		if msg.Media.ConversationID != "" {
			cmds = append(cmds, chat.SelectCmd(m.sessionMgr, msg.Media.ConversationID))
		}
		if msg.Media.Topic != "" {
			m.toasts.AddSuccess(msg.Media.Topic)
			cmds = append(cmds, components.ToastTickCmd())
		}
		return m, tea.Batch(cmds...)

	case lessonsview.SelectedMsg:
		m.page = pageUpload
		var cmd tea.Cmd
		m.uploadPage, cmd = m.uploadPage.SubmitYouTubeURL(msg.Lesson.URL)
		return m, cmd

	case components.RevealTickMsg:
		// Reveal animation keeps running even while another page is up.
		var cmd tea.Cmd
		m.chatPage, cmd = m.chatPage.Update(msg)
		return m, cmd

	case components.ToastTickMsg:
		m.toasts.Tick()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case tea.KeyMsg:
		if handled, next, cmd := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.routeToPage(msg)
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	keys := defaultGlobalKeys()

	switch {
	case key.Matches(msg, keys.Quit):
		return true, m, tea.Quit

	case key.Matches(msg, keys.Logout):
		if m.loggedIn {
			// The cookie jar and session state are torn down with the
			// process; logging in again restarts the program.
			m.authMgr.Logout(context.Background())
			return true, m, tea.Quit
		}
		return true, m, nil

	case key.Matches(msg, keys.ToggleLocale):
		return true, m.setLocale(m.loc.Other()), nil
	}

	if !m.loggedIn {
		return false, m, nil
	}
	if m.page == pageUpload && m.uploadPage.Busy() {
		// No page switches while a transcription is in flight; esc
		// cancels it from the page itself.
		return false, m, nil
	}

	switch {
	case key.Matches(msg, keys.GotoChat):
		m.page = pageChat
		return true, m, nil
	case key.Matches(msg, keys.GotoUpload):
		m.page = pageUpload
		return true, m, nil
	case key.Matches(msg, keys.GotoLessons):
		m.page = pageLessons
		return true, m, nil
	}
	return false, m, nil
}

func (m Model) enterChat(user model.User) (Model, tea.Cmd) {
	m.loggedIn = true
	m.page = pageChat

	interval := time.Duration(m.cfg.Chat.RevealIntervalMs) * time.Millisecond
	maxDur := time.Duration(m.cfg.Chat.RevealMaxSeconds) * time.Second
	m.chatPage = chat.New(m.sessionMgr, m.ledger, m.theme, m.loc, interval, maxDur, user.Name)
	m.chatPage.SetSize(m.width, m.height)
	return m, m.chatPage.Init()
}

func (m Model) setLocale(loc locale.Locale) Model {
	m.loc = loc
	m.authPage.SetLocale(loc)
	m.chatPage.SetLocale(loc)
	m.uploadPage.SetLocale(loc)
	m.lessonsPage.SetLocale(loc)
	return m
}

func (m Model) toast(message string) (Model, tea.Cmd) {
	m.toasts.AddError(message)
	return m, components.ToastTickCmd()
}

func (m Model) routeToPage(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.page {
	case pageAuth:
		m.authPage, cmd = m.authPage.Update(msg)
	case pageChat:
		m.chatPage, cmd = m.chatPage.Update(msg)
	case pageUpload:
		m.uploadPage, cmd = m.uploadPage.Update(msg)
	case pageLessons:
		m.lessonsPage, cmd = m.lessonsPage.Update(msg)
	}
	return m, cmd
}

// View renders the active page with the toast stack on top.
func (m Model) View() string {
	var body string
	switch m.page {
	case pageAuth:
		body = m.authPage.View()
	case pageChat:
		body = m.chatPage.View()
	case pageUpload:
		body = m.uploadPage.View()
	case pageLessons:
		body = m.lessonsPage.View()
	}

	if m.toasts.HasToasts() && m.width > 0 {
		overlay := components.RenderToastStack(m.toasts.Toasts(), m.width, m.height)
		if overlay != "" {
			return body + "\n" + overlay
		}
	}
	return body
}
