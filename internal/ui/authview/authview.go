// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package authview is the login and signup form shown before a session
// exists.
package authview

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/deenbot/deenbot-tui/internal/auth"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
)

// mode selects which form is active.
type mode int

const (
	modeLogin mode = iota
	modeSignup
)

// field indexes into the input slice.
const (
	fieldEmail = iota
	fieldPassword
	fieldUsername
	fieldFullName
)

// LoggedInMsg announces a successful login or signup to the app shell.
type LoggedInMsg struct {
	User model.User
}

// ErrorMsg carries a form failure for the toast stack.
type ErrorMsg struct {
	Message string
}

type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Submit     key.Binding
	SwitchMode key.Binding
	Social     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("tab", "down")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab", "up")),
		Submit:     key.NewBinding(key.WithKeys("enter")),
		SwitchMode: key.NewBinding(key.WithKeys("ctrl+s")),
		Social:     key.NewBinding(key.WithKeys("ctrl+o")),
	}
}

// Model is the auth page.
type Model struct {
	mgr     *auth.Manager
	theme   styles.Theme
	strings locale.Strings
	loc     locale.Locale

	mode    mode
	inputs  []textinput.Model
	focused int
	busy    bool

	width  int
	height int
}

// New creates the auth page.
func New(mgr *auth.Manager, theme styles.Theme, loc locale.Locale) Model {
	str := locale.T(loc)

	email := textinput.New()
	email.Placeholder = str.Email
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = str.Password
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	username := textinput.New()
	username.Placeholder = str.Username
	username.CharLimit = 64

	fullName := textinput.New()
	fullName.Placeholder = str.FullName
	fullName.CharLimit = 128

	return Model{
		mgr:     mgr,
		theme:   theme,
		strings: str,
		loc:     loc,
		inputs:  []textinput.Model{email, password, username, fullName},
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize records the terminal size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	for i := range m.inputs {
		m.inputs[i].Width = 40
	}
}

// SetLocale re-localizes the form chrome.
func (m *Model) SetLocale(loc locale.Locale) {
	m.loc = loc
	m.strings = locale.T(loc)
	m.inputs[fieldEmail].Placeholder = m.strings.Email
	m.inputs[fieldPassword].Placeholder = m.strings.Password
	m.inputs[fieldUsername].Placeholder = m.strings.Username
	m.inputs[fieldFullName].Placeholder = m.strings.FullName
}

// fieldCount is how many inputs the active mode shows.
func (m Model) fieldCount() int {
	if m.mode == modeSignup {
		return 4
	}
	return 2
}

type authResultMsg struct {
	user model.User
	err  error
}

func loginCmd(mgr *auth.Manager, email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := mgr.Login(context.Background(), email, password)
		return authResultMsg{user: user, err: err}
	}
}

func signupCmd(mgr *auth.Manager, username, email, password, fullName string) tea.Cmd {
	return func() tea.Msg {
		user, err := mgr.Signup(context.Background(), username, email, password, fullName)
		return authResultMsg{user: user, err: err}
	}
}

// Update handles auth page messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.busy = false
		if msg.err != nil {
			return m, func() tea.Msg { return ErrorMsg{Message: msg.err.Error()} }
		}
		return m, func() tea.Msg { return LoggedInMsg{User: msg.user} }

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keys := defaultKeyMap()
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.SwitchMode):
		if m.mode == modeLogin {
			m.mode = modeSignup
		} else {
			m.mode = modeLogin
		}
		m.focusField(0)
		return m, nil

	case key.Matches(msg, keys.Social):
		err := m.mgr.SocialLogin("google")
		return m, func() tea.Msg { return ErrorMsg{Message: err.Error()} }

	case key.Matches(msg, keys.Next):
		m.focusField((m.focused + 1) % m.fieldCount())
		return m, nil

	case key.Matches(msg, keys.Prev):
		m.focusField((m.focused - 1 + m.fieldCount()) % m.fieldCount())
		return m, nil

	case key.Matches(msg, keys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) focusField(i int) {
	m.inputs[m.focused].Blur()
	m.focused = i
	m.inputs[m.focused].Focus()
}

func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		return m, nil
	}

	m.busy = true
	if m.mode == modeLogin {
		return m, loginCmd(m.mgr, email, password)
	}

	username := strings.TrimSpace(m.inputs[fieldUsername].Value())
	if username == "" {
		return m, nil
	}
	fullName := strings.TrimSpace(m.inputs[fieldFullName].Value())
	return m, signupCmd(m.mgr, username, email, password, fullName)
}

// View renders the form centered in the terminal.
func (m Model) View() string {
	title := m.strings.Login
	other := m.strings.Signup
	if m.mode == modeSignup {
		title, other = other, title
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("deenbot"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.Subtitle.Render(title))
	b.WriteString("\n\n")

	for i := 0; i < m.fieldCount(); i++ {
		label := m.theme.FormLabel
		if i == m.focused {
			label = m.theme.FormActive
		}
		b.WriteString(label.Render(m.inputs[i].Placeholder))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}

	if m.busy {
		b.WriteString(m.theme.Muted.Render(m.strings.Thinking))
	} else {
		b.WriteString(m.theme.Muted.Render("enter: " + title + "  ctrl+s: " + other + "  ctrl+o: google"))
	}

	form := lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	if m.width == 0 {
		return form
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}
