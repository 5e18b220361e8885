// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lessonsview is the lessons browser: search the curated lecture
// catalog and hand a chosen lesson to the transcription pipeline.
package lessonsview

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/lessons"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
	"github.com/deenbot/deenbot-tui/internal/util"
)

// SelectedMsg carries the lesson the user picked; the app shell routes
// it into the upload pipeline.
type SelectedMsg struct {
	Lesson api.Lesson
}

// ErrorMsg carries a search failure for the toast stack.
type ErrorMsg struct {
	Message string
}

type searchResultMsg struct {
	results []api.Lesson
	err     error
}

type focus int

const (
	focusSearch focus = iota
	focusResults
)

type keyMap struct {
	Submit      key.Binding
	ToggleFocus key.Binding
	Up          key.Binding
	Down        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:      key.NewBinding(key.WithKeys("enter")),
		ToggleFocus: key.NewBinding(key.WithKeys("tab")),
		Up:          key.NewBinding(key.WithKeys("up", "k")),
		Down:        key.NewBinding(key.WithKeys("down", "j")),
	}
}

// Model is the lessons page.
type Model struct {
	browser *lessons.Browser
	theme   styles.Theme
	strings locale.Strings
	loc     locale.Locale

	search   textinput.Model
	results  []api.Lesson
	selected int
	focus    focus
	busy     bool

	width  int
	height int
}

// New creates the lessons page.
func New(browser *lessons.Browser, theme styles.Theme, loc locale.Locale) Model {
	str := locale.T(loc)

	search := textinput.New()
	search.Placeholder = str.SearchLessons
	search.CharLimit = 256
	search.Focus()

	return Model{
		browser: browser,
		theme:   theme,
		strings: str,
		loc:     loc,
		search:  search,
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
	m.search.Width = 60
}

// SetLocale re-localizes the page chrome.
func (m *Model) SetLocale(loc locale.Locale) {
	m.loc = loc
	m.strings = locale.T(loc)
	m.search.Placeholder = m.strings.SearchLessons
}

func searchCmd(browser *lessons.Browser, query string) tea.Cmd {
	return func() tea.Msg {
		results, err := browser.Search(context.Background(), query)
		return searchResultMsg{results: results, err: err}
	}
}

// Update handles lessons page messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultMsg:
		m.busy = false
		if msg.err != nil {
			return m, func() tea.Msg { return ErrorMsg{Message: msg.err.Error()} }
		}
		m.results = msg.results
		m.selected = 0
		if len(m.results) > 0 {
			m.focus = focusResults
			m.search.Blur()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keys := defaultKeyMap()
	if m.busy {
		return m, nil
	}

	if key.Matches(msg, keys.ToggleFocus) {
		if m.focus == focusSearch {
			m.focus = focusResults
			m.search.Blur()
		} else {
			m.focus = focusSearch
			m.search.Focus()
		}
		return m, nil
	}

	if m.focus == focusResults {
		switch {
		case key.Matches(msg, keys.Up):
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.selected < len(m.results)-1 {
				m.selected++
			}
			return m, nil
		case key.Matches(msg, keys.Submit):
			if m.selected < len(m.results) {
				lesson := m.results[m.selected]
				return m, func() tea.Msg { return SelectedMsg{Lesson: lesson} }
			}
			return m, nil
		}
		return m, nil
	}

	if key.Matches(msg, keys.Submit) {
		query := strings.TrimSpace(m.search.Value())
		if query == "" {
			return m, nil
		}
		m.busy = true
		return m, searchCmd(m.browser, query)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// View renders the search box and result list.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.strings.Lessons))
	b.WriteString("\n\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	if m.busy {
		b.WriteString(m.theme.Muted.Render(m.strings.Thinking))
	}

	maxTitle := m.width - 20
	if maxTitle < 20 {
		maxTitle = 40
	}
	for i, lesson := range m.results {
		line := fmt.Sprintf("%s  %s (%s)",
			util.TruncateWidth(lesson.Title, maxTitle), lesson.Channel, lesson.Duration)
		style := m.theme.SidebarItem
		if m.focus == focusResults && i == m.selected {
			style = m.theme.SidebarSelected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	page := lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	if m.width == 0 {
		return page
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, page)
}
