// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package uploadview is the media transcription page: submit a local
// audio or video file, or a YouTube URL, and watch the simulated
// progress while the backend works.
package uploadview

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
	"github.com/deenbot/deenbot-tui/internal/upload"
)

const progressTickInterval = 250 * time.Millisecond

// DoneMsg announces a finished transcription to the app shell; the media
// result names the conversation that now carries the transcript context.
type DoneMsg struct {
	Media api.MediaResult
}

// ErrorMsg carries a submission failure for the toast stack.
type ErrorMsg struct {
	Message string
}

type progressTickMsg struct{}

type jobDoneMsg struct {
	result upload.Result
}

type field int

const (
	fieldFile field = iota
	fieldYouTube
)

type keyMap struct {
	ToggleField key.Binding
	Submit      key.Binding
	Cancel      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleField: key.NewBinding(key.WithKeys("tab")),
		Submit:      key.NewBinding(key.WithKeys("enter")),
		Cancel:      key.NewBinding(key.WithKeys("esc")),
	}
}

// Model is the upload page.
type Model struct {
	submitter *upload.Submitter
	theme     styles.Theme
	strings   locale.Strings
	loc       locale.Locale

	fileInput    textinput.Model
	youtubeInput textinput.Model
	focused      field

	job     *upload.Job
	results <-chan upload.Result

	width  int
	height int
}

// New creates the upload page.
func New(submitter *upload.Submitter, theme styles.Theme, loc locale.Locale) Model {
	str := locale.T(loc)

	file := textinput.New()
	file.Placeholder = str.UploadPrompt
	file.CharLimit = 512
	file.Focus()

	youtube := textinput.New()
	youtube.Placeholder = str.YouTubePrompt
	youtube.CharLimit = 512

	return Model{
		submitter:    submitter,
		theme:        theme,
		strings:      str,
		loc:          loc,
		fileInput:    file,
		youtubeInput: youtube,
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
	m.fileInput.Width = 60
	m.youtubeInput.Width = 60
}

// SetLocale re-localizes the page chrome.
func (m *Model) SetLocale(loc locale.Locale) {
	m.loc = loc
	m.strings = locale.T(loc)
	m.fileInput.Placeholder = m.strings.UploadPrompt
	m.youtubeInput.Placeholder = m.strings.YouTubePrompt
}

// Busy reports whether a submission is in flight.
func (m Model) Busy() bool {
	return m.job != nil
}

func progressTickCmd() tea.Cmd {
	return tea.Tick(progressTickInterval, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func waitForResultCmd(results <-chan upload.Result) tea.Cmd {
	return func() tea.Msg {
		return jobDoneMsg{result: <-results}
	}
}

// Update handles upload page messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case progressTickMsg:
		if m.job == nil {
			return m, nil
		}
		return m, progressTickCmd()

	case jobDoneMsg:
		m.job = nil
		m.results = nil
		if msg.result.Err != nil {
			return m, func() tea.Msg { return ErrorMsg{Message: msg.result.Err.Error()} }
		}
		m.fileInput.SetValue("")
		m.youtubeInput.SetValue("")
		return m, func() tea.Msg { return DoneMsg{Media: msg.result.Media} }
	}

	var cmd tea.Cmd
	if m.focused == fieldFile {
		m.fileInput, cmd = m.fileInput.Update(msg)
	} else {
		m.youtubeInput, cmd = m.youtubeInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keys := defaultKeyMap()

	if m.job != nil {
		if key.Matches(msg, keys.Cancel) {
			m.job.Cancel()
		}
		// Everything else waits for the job.
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.ToggleField):
		if m.focused == fieldFile {
			m.focused = fieldYouTube
			m.fileInput.Blur()
			m.youtubeInput.Focus()
		} else {
			m.focused = fieldFile
			m.youtubeInput.Blur()
			m.fileInput.Focus()
		}
		return m, nil

	case key.Matches(msg, keys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	if m.focused == fieldFile {
		m.fileInput, cmd = m.fileInput.Update(msg)
	} else {
		m.youtubeInput, cmd = m.youtubeInput.Update(msg)
	}
	return m, cmd
}

// SubmitYouTubeURL starts a transcription for a URL chosen elsewhere,
// such as the lessons browser.
func (m Model) SubmitYouTubeURL(rawURL string) (Model, tea.Cmd) {
	if m.job != nil {
		return m, nil
	}
	m.focused = fieldYouTube
	m.youtubeInput.SetValue(rawURL)
	return m.submit()
}

func (m Model) submit() (Model, tea.Cmd) {
	var (
		job     *upload.Job
		results <-chan upload.Result
		err     error
	)

	if m.focused == fieldFile {
		path := strings.TrimSpace(m.fileInput.Value())
		if path == "" {
			return m, nil
		}
		job, results, err = m.submitter.SubmitFile(context.Background(), path)
	} else {
		rawURL := strings.TrimSpace(m.youtubeInput.Value())
		if rawURL == "" {
			return m, nil
		}
		job, results, err = m.submitter.SubmitYouTube(context.Background(), rawURL, m.loc)
	}

	// Validation failures never reach the network; report them directly.
	if err != nil {
		return m, func() tea.Msg { return ErrorMsg{Message: err.Error()} }
	}

	m.job = job
	m.results = results
	return m, tea.Batch(progressTickCmd(), waitForResultCmd(results))
}

func (m Model) phaseLabel(phase upload.Phase) string {
	switch phase {
	case upload.PhaseDownloading:
		return m.strings.PhaseDownloading
	case upload.PhaseExtracting:
		return m.strings.PhaseExtracting
	case upload.PhaseConverting:
		return m.strings.PhaseConverting
	default:
		return m.strings.PhaseTranscribing
	}
}

// View renders the upload form or the progress display.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.strings.Upload))
	b.WriteString("\n\n")

	if m.job != nil {
		p := m.job.Simulator.Now()
		b.WriteString(m.theme.Subtitle.Render(m.phaseLabel(p.Phase)))
		b.WriteString("\n\n")
		b.WriteString(styles.RenderProgressBar(50, p.Percent))
		b.WriteString("\n\n")
		b.WriteString(m.theme.Muted.Render("esc: " + m.strings.Cancel))
	} else {
		b.WriteString(m.theme.FormLabel.Render(m.strings.UploadPrompt))
		b.WriteString("\n")
		b.WriteString(m.fileInput.View())
		b.WriteString("\n\n")
		b.WriteString(m.theme.FormLabel.Render(m.strings.YouTubePrompt))
		b.WriteString("\n")
		b.WriteString(m.youtubeInput.View())
	}

	form := lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	if m.width == 0 {
		return form
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}
