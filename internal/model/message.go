// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the client-side data structures for users,
// conversations, and messages exchanged with the deenbot backend.
package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Roles
// =============================================================================

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// =============================================================================
// Messages
// =============================================================================

// Message is a single chat bubble. Two messages may share an ID: the backend
// stores a question/answer pair as one turn record, and the client splits it
// into a user message and an assistant message with the same ID. The unique
// key for a message is therefore the (ID, Role) pair, never the ID alone.
type Message struct {
	ID              string    `json:"id"`
	Content         string    `json:"content"`
	Role            Role      `json:"role"`
	Timestamp       time.Time `json:"timestamp"`
	ContextExtracts []string  `json:"context_extracts,omitempty"`
}

// NewUserMessage creates a local optimistic user message with a fresh
// client-side ID.
func NewUserMessage(content string) Message {
	return Message{
		ID:        "msg_" + uuid.NewString(),
		Content:   content,
		Role:      RoleUser,
		Timestamp: time.Now(),
	}
}

// Key returns the identity of this message within a conversation.
func (m Message) Key() MessageKey {
	return MessageKey{ID: m.ID, Role: m.Role}
}

// MessageKey uniquely identifies a message. ID alone is insufficient because
// both halves of a split turn share the turn's ID.
type MessageKey struct {
	ID   string
	Role Role
}

// =============================================================================
// Turn records
// =============================================================================

// Turn is the backend's storage unit: one question/answer round trip.
type Turn struct {
	ID              string    `json:"id"`
	Question        string    `json:"question"`
	Answer          string    `json:"answer"`
	CreatedAt       time.Time `json:"created_at"`
	ContextExtracts []string  `json:"context_extracts,omitempty"`
}

// SplitTurn converts a turn record into display messages: one user message
// from the question and one assistant message from the answer, both carrying
// the turn's ID and timestamp. An empty question or answer yields no message
// for that half.
func SplitTurn(t Turn) []Message {
	msgs := make([]Message, 0, 2)
	if t.Question != "" {
		msgs = append(msgs, Message{
			ID:        t.ID,
			Content:   t.Question,
			Role:      RoleUser,
			Timestamp: t.CreatedAt,
		})
	}
	if t.Answer != "" {
		msgs = append(msgs, Message{
			ID:              t.ID,
			Content:         t.Answer,
			Role:            RoleAssistant,
			Timestamp:       t.CreatedAt,
			ContextExtracts: t.ContextExtracts,
		})
	}
	return msgs
}

// MergeTurns splits every turn and returns the flattened messages sorted
// ascending by timestamp. The sort is stable so the user half of a turn
// stays ahead of its assistant half.
func MergeTurns(turns []Turn) []Message {
	msgs := make([]Message, 0, len(turns)*2)
	for _, t := range turns {
		msgs = append(msgs, SplitTurn(t)...)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs
}
