// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deenbot/deenbot-tui/internal/util"
)

// =============================================================================
// ID prefixes
// =============================================================================

const (
	// TempIDPrefix marks a client-only conversation that has not yet been
	// created on the backend. Temp conversations stay out of the visible
	// list until promoted.
	TempIDPrefix = "temp_"

	// LocalIDPrefix marks a local fallback conversation created after a
	// backend create failed. It behaves like a normal conversation but has
	// no server counterpart.
	LocalIDPrefix = "conv_"
)

// DefaultTitleLen caps fallback titles generated from the first question.
const DefaultTitleLen = 30

// =============================================================================
// Conversations
// =============================================================================

// Conversation is a chat thread. A conversation holds at most one of each
// (ID, Role) message pair; ordering is ascending by timestamp.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ContextID links the conversation to an uploaded media transcript,
	// when one exists.
	ContextID string `json:"context_id,omitempty"`

	// LocalOnly is set on fallback conversations that could not be created
	// on the backend. Their messages never sync.
	LocalOnly bool `json:"local_only,omitempty"`
}

// NewTempConversation creates a client-only conversation with a temp ID.
func NewTempConversation(title string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        TempIDPrefix + uuid.NewString(),
		Title:     title,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewLocalConversation creates a local fallback conversation used when the
// backend create call fails.
func NewLocalConversation(title string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        LocalIDPrefix + uuid.NewString(),
		Title:     title,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
		LocalOnly: true,
	}
}

// IsTemp reports whether the conversation exists only on this client and is
// awaiting promotion.
func (c *Conversation) IsTemp() bool {
	return strings.HasPrefix(c.ID, TempIDPrefix)
}

// AddMessage appends a message and bumps UpdatedAt.
func (c *Conversation) AddMessage(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// RemoveMessage removes the message with the given key. Returns true if a
// message was removed.
func (c *Conversation) RemoveMessage(key MessageKey) bool {
	for i, m := range c.Messages {
		if m.Key() == key {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// LastMessage returns the most recent message, or nil when empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// FirstUserMessage returns the earliest user message, or nil.
func (c *Conversation) FirstUserMessage() *Message {
	for i := range c.Messages {
		if c.Messages[i].Role == RoleUser {
			return &c.Messages[i]
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return &clone
}

// FallbackTitle derives a title from a question when the backend title
// generator is unavailable: the first line truncated to DefaultTitleLen runes.
func FallbackTitle(question string) string {
	line := util.FirstLine(question)
	if line == "" {
		return ""
	}
	return util.TruncateRunes(line, DefaultTitleLen)
}

// =============================================================================
// Users
// =============================================================================

// User is the authenticated account as reported by the backend.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}
