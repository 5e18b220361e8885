// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/ui/components"
)

// refreshTranscript rebuilds the viewport from the current conversation.
func (m *Model) refreshTranscript() {
	conv := m.mgr.Current()
	if conv == nil {
		m.viewport.SetContent(m.theme.Muted.Render(m.strings.NewConversation))
		return
	}

	var b strings.Builder
	for i, msg := range conv.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(conv.ID, msg))
	}
	m.viewport.SetContent(b.String())
}

func (m *Model) renderMessage(conversationID string, msg model.Message) string {
	width := m.viewport.Width
	if width < 20 {
		width = 20
	}

	if msg.Role == model.RoleUser {
		bubble := m.theme.UserBubble.MaxWidth(width - 4).Render(msg.Content)
		if locale.TextRTL(msg.Content) || m.loc.RTL() {
			return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
		}
		return bubble
	}

	r := m.revealFor(conversationID, msg)
	if r.Done() {
		return m.theme.AssistantBubble.MaxWidth(width).Render(m.renderMarkdown(msg.Content))
	}
	// Markdown rendering waits until the animation completes; partial
	// markdown flickers as fences and emphasis open and close.
	return m.theme.AssistantBubble.MaxWidth(width).Render(r.Visible())
}

func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// View renders the chat page.
func (m Model) View() string {
	conversations := m.mgr.Conversations()
	current := m.mgr.Current()
	currentID := ""
	if current != nil {
		currentID = current.ID
	}

	contentHeight := m.height - 2
	if contentHeight < 3 {
		contentHeight = 3
	}

	sidebar := m.sidebar.Render(conversations, currentID, contentHeight)

	var inputLine string
	switch {
	case m.confirmDelete != "":
		inputLine = m.theme.ErrorText.Render(m.strings.DeleteConfirm)
	case m.mgr.Sending():
		inputLine = m.spin.View() + " " + m.theme.Muted.Render(m.strings.Thinking)
	default:
		inputLine = m.theme.InputBox.Width(m.viewport.Width).Render(m.input.View())
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		inputLine,
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)

	status := m.statusbar.Render(components.StatusState{
		UserName:      m.userName,
		Locale:        m.loc,
		Conversations: len(conversations),
		Sending:       m.mgr.Sending(),
		Connected:     m.connected,
	}, m.width)

	return lipgloss.JoinVertical(lipgloss.Left, body, status)
}
