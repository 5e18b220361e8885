// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/deenbot/deenbot-tui/internal/model"
)

// =============================================================================
// Wire types
// =============================================================================

// ConversationRecord is the backend's conversation metadata. Messages travel
// separately as turn records.
type ConversationRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	ContextID string    `json:"context_id,omitempty"`
}

// ToConversation converts backend metadata into an empty client conversation.
func (r ConversationRecord) ToConversation() *model.Conversation {
	return &model.Conversation{
		ID:        r.ID,
		Title:     r.Title,
		Messages:  []model.Message{},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.CreatedAt,
		ContextID: r.ContextID,
	}
}

// SendResult is the backend's reply to a posted question: the stored turn's
// ID, the generated answer, and any supporting extracts.
type SendResult struct {
	ID              string    `json:"id"`
	Answer          string    `json:"answer"`
	CreatedAt       time.Time `json:"created_at"`
	ContextExtracts []string  `json:"context_extracts,omitempty"`
}

// =============================================================================
// Conversation operations
// =============================================================================

// CreateConversation creates a conversation on the backend.
func (c *Client) CreateConversation(ctx context.Context, userID, title, contextID string) (ConversationRecord, error) {
	body := map[string]string{
		"user_id": userID,
		"title":   title,
	}
	if contextID != "" {
		body["context_id"] = contextID
	}
	var rec ConversationRecord
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/chat/conversations", body, &rec)
	return rec, err
}

// GetConversation fetches conversation metadata by ID.
func (c *Client) GetConversation(ctx context.Context, id string) (ConversationRecord, error) {
	var rec ConversationRecord
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/chat/conversations/"+url.PathEscape(id), nil, &rec)
	return rec, err
}

// ListConversations returns the user's conversations, most recent first.
func (c *Client) ListConversations(ctx context.Context, userID string) ([]ConversationRecord, error) {
	var recs []ConversationRecord
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/chat/user/"+url.PathEscape(userID)+"/conversations", nil, &recs)
	return recs, err
}

// DeleteConversation removes a conversation and its messages on the backend.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/chat/conversations/"+url.PathEscape(id), nil, nil)
}

// =============================================================================
// Message operations
// =============================================================================

// GetMessages fetches the turn records of a conversation.
func (c *Client) GetMessages(ctx context.Context, conversationID string) ([]model.Turn, error) {
	var turns []model.Turn
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/chat/messages/"+url.PathEscape(conversationID), nil, &turns)
	return turns, err
}

// SendMessage posts a question and blocks until the backend has generated
// the answer. The language hint steers the answer language; contextID scopes
// the question to an uploaded transcript when set.
func (c *Client) SendMessage(ctx context.Context, conversationID, userID, question, contextID, language string) (SendResult, error) {
	body := map[string]string{
		"conversation_id": conversationID,
		"user_id":         userID,
		"question":        question,
		"answer":          "",
		"language":        language,
	}
	if contextID != "" {
		body["context_id"] = contextID
	}
	var res SendResult
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/chat/messages", body, &res)
	return res, err
}

// =============================================================================
// Standalone QA
// =============================================================================

// Ask sends a one-shot question outside any conversation.
func (c *Client) Ask(ctx context.Context, question, language string) (string, error) {
	body := map[string]string{"question": question, "language": language}
	var res struct {
		Answer string `json:"answer"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/fatwaask", body, &res); err != nil {
		return "", err
	}
	return res.Answer, nil
}

// GenerateTitle asks the backend to summarize the first exchange into a
// conversation title.
func (c *Client) GenerateTitle(ctx context.Context, userMessage, assistantResponse string) (string, error) {
	body := map[string]string{
		"user_message":       userMessage,
		"assistant_response": assistantResponse,
	}
	var res struct {
		Title string `json:"title"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/generate-title", body, &res); err != nil {
		return "", err
	}
	return res.Title, nil
}
