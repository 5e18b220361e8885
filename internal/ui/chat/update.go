// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/deenbot/deenbot-tui/internal/ui/components"
)

// ToastMsg asks the app shell to show a toast.
type ToastMsg struct {
	Message string
	Kind    components.ToastKind
}

func toastError(message string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Message: message, Kind: components.ToastKindError} }
}

// Update handles chat page messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case sendResultMsg:
		if msg.Err != nil {
			// Optimistic message already rolled back by the manager.
			return m, toastError(m.strings.ErrSendFailed + ": " + msg.Err.Error())
		}
		// Start the reveal for the fresh answer.
		r := m.revealFor(msg.ConversationID, msg.Assistant)
		m.refreshTranscript()
		m.viewport.GotoBottom()
		if cmd := r.TickCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case components.RevealTickMsg:
		if r, ok := m.reveals[msg.Key]; ok && !r.Done() {
			if r.Advance() {
				m.markRevealed(r)
			}
			m.refreshTranscript()
			m.viewport.GotoBottom()
			if cmd := r.TickCmd(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case conversationsLoadedMsg:
		if msg.Err != nil {
			return m, toastError(m.strings.ErrLoadFailed + ": " + msg.Err.Error())
		}
		m.refreshTranscript()
		return m, tea.Batch(m.startPendingReveals()...)

	case conversationSelectedMsg:
		if msg.Err != nil {
			return m, toastError(m.strings.ErrLoadFailed + ": " + msg.Err.Error())
		}
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, tea.Batch(m.startPendingReveals()...)

	case conversationDeletedMsg:
		m.refreshTranscript()
		if msg.Err != nil {
			return m, toastError(m.strings.ErrDeleteFailed + ": " + msg.Err.Error())
		}
		return m, tea.Batch(m.startPendingReveals()...)

	case conversationCreatedMsg:
		m.refreshTranscript()
		if msg.Err != nil {
			return m, toastError(m.strings.ErrCreateFailed + ": " + msg.Err.Error())
		}
		return m, nil

	case transcriptRefreshMsg:
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keys := defaultKeyMap()

	// Any keypress fast-forwards a running reveal before doing its own work.
	fastForwarded := false
	for _, r := range m.reveals {
		if !r.Done() {
			if r.FastForward() {
				m.markRevealed(r)
			}
			fastForwarded = true
		}
	}
	if fastForwarded {
		m.refreshTranscript()
		m.viewport.GotoBottom()
	}

	// A pending delete confirmation swallows everything but y/n.
	if m.confirmDelete != "" {
		id := m.confirmDelete
		m.confirmDelete = ""
		if strings.EqualFold(msg.String(), "y") {
			return m, deleteConversationCmd(m.mgr, id)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.ToggleFocus):
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, keys.NewConv):
		m.mgr.CreateTempConversation()
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, keys.RefreshList):
		return m, loadConversationsCmd(m.mgr)

	case key.Matches(msg, keys.ToggleLocale):
		m.SetLocale(m.loc.Other())
		m.refreshTranscript()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg, keys)
	}
	return m.handleInputKey(msg, keys)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg, keys keyMap) (Model, tea.Cmd) {
	conversations := m.mgr.Conversations()

	switch {
	case key.Matches(msg, keys.Up):
		m.sidebar.Move(-1, len(conversations))
		return m, nil
	case key.Matches(msg, keys.Down):
		m.sidebar.Move(1, len(conversations))
		return m, nil
	case key.Matches(msg, keys.Select):
		if m.sidebar.Selected < len(conversations) {
			return m, selectConversationCmd(m.mgr, conversations[m.sidebar.Selected].ID)
		}
		return m, nil
	case key.Matches(msg, keys.Delete):
		if m.sidebar.Selected < len(conversations) {
			m.confirmDelete = conversations[m.sidebar.Selected].ID
		}
		return m, nil
	case key.Matches(msg, keys.NewSavedConv):
		// Backend-registered conversation; ctrl+n stays client-only
		// until the first send.
		return m, createConversationCmd(m.mgr)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg, keys keyMap) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Send):
		content := strings.TrimSpace(m.input.Value())
		if content == "" {
			return m, nil
		}
		if m.mgr.Sending() {
			// Submission is disabled while an answer is pending.
			return m, nil
		}
		m.input.SetValue("")
		// The optimistic user message appears on the next refresh; the
		// command blocks until the answer or the rollback.
		cmd := sendMessageCmd(m.mgr, content)
		return m, tea.Batch(cmd, m.spin.Tick, func() tea.Msg {
			return transcriptRefreshMsg{}
		})

	case key.Matches(msg, keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// transcriptRefreshMsg redraws the transcript, used right after the
// optimistic append so the user message shows before the answer arrives.
type transcriptRefreshMsg struct{}

// startPendingReveals begins the animation for answers that entered the
// transcript outside the send path, such as fetched history that is not
// yet in the ledger.
func (m *Model) startPendingReveals() []tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range m.reveals {
		if cmd := r.StartTicks(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}
