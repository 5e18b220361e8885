// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/session"
)

// =============================================================================
// Messages
// =============================================================================

// sendResultMsg carries the outcome of a send: either the assistant's
// answer or the error after the optimistic message was rolled back.
type sendResultMsg struct {
	ConversationID string
	Assistant      model.Message
	Err            error
}

// conversationsLoadedMsg follows a list refresh.
type conversationsLoadedMsg struct {
	Err error
}

// conversationSelectedMsg follows a select or fetch.
type conversationSelectedMsg struct {
	ID  string
	Err error
}

// conversationDeletedMsg follows a delete; the manager has already
// repaired the selection.
type conversationDeletedMsg struct {
	ID  string
	Err error
}

// conversationCreatedMsg follows an explicit create.
type conversationCreatedMsg struct {
	Conversation *model.Conversation
	Err          error
}

// =============================================================================
// Commands
// =============================================================================

func sendMessageCmd(mgr *session.Manager, content string) tea.Cmd {
	return func() tea.Msg {
		// The manager reports where the exchange landed. Reading the
		// current conversation here instead would mis-attribute the
		// answer when the selection changed during the send.
		convID, assistant, err := mgr.SendMessage(context.Background(), content)
		return sendResultMsg{
			ConversationID: convID,
			Assistant:      assistant,
			Err:            err,
		}
	}
}

func loadConversationsCmd(mgr *session.Manager) tea.Cmd {
	return func() tea.Msg {
		return conversationsLoadedMsg{Err: mgr.LoadConversations(context.Background())}
	}
}

func selectConversationCmd(mgr *session.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		return conversationSelectedMsg{ID: id, Err: mgr.SelectConversation(context.Background(), id)}
	}
}

// SelectCmd opens a conversation by ID from outside the chat page, for
// example after a transcription lands in a fresh conversation.
func SelectCmd(mgr *session.Manager, id string) tea.Cmd {
	return selectConversationCmd(mgr, id)
}

func deleteConversationCmd(mgr *session.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		return conversationDeletedMsg{ID: id, Err: mgr.DeleteConversation(context.Background(), id)}
	}
}

func createConversationCmd(mgr *session.Manager) tea.Cmd {
	return func() tea.Msg {
		conv, err := mgr.CreateConversation(context.Background())
		return conversationCreatedMsg{Conversation: conv, Err: err}
	}
}
