// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/auth"
	"github.com/deenbot/deenbot-tui/internal/ledger"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/storage"
)

// =============================================================================
// Fake backend
// =============================================================================

// chatBackend is an in-memory stand-in for the deenbot server.
type chatBackend struct {
	mu            sync.Mutex
	nextID        int
	conversations map[string]map[string]any
	turns         map[string][]map[string]any

	failCreate bool
	failSend   bool
	failDelete bool
	deleted    []string

	// Called while a send is in flight, before the answer is written.
	onSend func()
}

func newChatBackend() *chatBackend {
	return &chatBackend{
		conversations: make(map[string]map[string]any),
		turns:         make(map[string][]map[string]any),
	}
}

func (b *chatBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1"})
		writeJSON(w, map[string]any{"id": "u1", "email": "a@b.c", "username": "ahmad"})
	})

	mux.HandleFunc("POST /api/v1/chat/conversations", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failCreate {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, map[string]any{"detail": "create failed"})
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		b.nextID++
		id := fmt.Sprintf("srv-conv-%d", b.nextID)
		rec := map[string]any{
			"id": id, "title": body["title"],
			"created_at": time.Now().UTC().Format(time.RFC3339),
		}
		b.conversations[id] = rec
		writeJSON(w, rec)
	})

	mux.HandleFunc("GET /api/v1/chat/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		rec, ok := b.conversations[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]any{"detail": "Conversation not found"})
			return
		}
		writeJSON(w, rec)
	})

	mux.HandleFunc("DELETE /api/v1/chat/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failDelete {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, map[string]any{"detail": "delete failed"})
			return
		}
		id := r.PathValue("id")
		b.deleted = append(b.deleted, id)
		delete(b.conversations, id)
		delete(b.turns, id)
		writeJSON(w, map[string]any{})
	})

	mux.HandleFunc("GET /api/v1/chat/user/{uid}/conversations", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		recs := make([]map[string]any, 0, len(b.conversations))
		for _, rec := range b.conversations {
			recs = append(recs, rec)
		}
		writeJSON(w, recs)
	})

	mux.HandleFunc("GET /api/v1/chat/messages/{cid}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		turns := b.turns[r.PathValue("cid")]
		if turns == nil {
			turns = []map[string]any{}
		}
		writeJSON(w, turns)
	})

	mux.HandleFunc("POST /api/v1/chat/messages", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.onSend != nil {
			b.onSend()
		}
		if b.failSend {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, map[string]any{"detail": "answer generation failed"})
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := b.conversations[body["conversation_id"]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]any{"detail": "Conversation not found"})
			return
		}
		b.nextID++
		turn := map[string]any{
			"id":         fmt.Sprintf("turn-%d", b.nextID),
			"question":   body["question"],
			"answer":     "answer to: " + body["question"],
			"created_at": time.Now().UTC().Format(time.RFC3339),
		}
		b.turns[body["conversation_id"]] = append(b.turns[body["conversation_id"]], turn)
		writeJSON(w, turn)
	})

	mux.HandleFunc("POST /generate-title", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, map[string]any{"title": "Title: " + body["user_message"]})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Harness
// =============================================================================

type harness struct {
	backend *chatBackend
	manager *Manager
	ledger  *ledger.Ledger
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	backend := newChatBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	authMgr := auth.NewManager(client, storage.NewUserCache(t.TempDir()))
	_, err := authMgr.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	led, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })

	return &harness{
		backend: backend,
		manager: NewManager(client, authMgr, led, locale.English),
		ledger:  led,
	}
}

// =============================================================================
// Sending
// =============================================================================

// A send with no current conversation creates a temp conversation first and
// ends with it promoted to a real one.
func TestSendWithoutCurrentCreatesConversation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.Nil(t, h.manager.Current())

	_, reply, err := h.manager.SendMessage(ctx, "What is zakat?")
	require.NoError(t, err)
	assert.Equal(t, "answer to: What is zakat?", reply.Content)

	current := h.manager.Current()
	require.NotNil(t, current)
	assert.False(t, current.IsTemp(), "conversation must be promoted after a successful send")
	assert.True(t, strings.HasPrefix(current.ID, "srv-conv-"))
	require.Len(t, current.Messages, 2)
	assert.Equal(t, model.RoleUser, current.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, current.Messages[1].Role)
}

// The send result names the conversation the exchange landed in, even when
// the user switches to another conversation while the answer is generating.
func TestSendReportsReceivingConversation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.manager.SendMessage(ctx, "seed")
	require.NoError(t, err)
	target := h.manager.CurrentID()

	h.backend.onSend = func() { h.manager.CreateTempConversation() }
	convID, reply, err := h.manager.SendMessage(ctx, "follow-up")
	require.NoError(t, err)

	assert.Equal(t, target, convID, "the answer belongs to the conversation that was sent to")
	assert.NotEqual(t, h.manager.CurrentID(), convID, "current moved on during the send")

	var receiver *model.Conversation
	for _, c := range h.manager.Conversations() {
		if c.ID == target {
			receiver = c
		}
	}
	require.NotNil(t, receiver)
	last := receiver.Messages[len(receiver.Messages)-1]
	assert.Equal(t, reply.Content, last.Content)
}

// Promotion replaces the temp conversation wholesale but preserves the
// optimistic message and ordering.
func TestPromotionPreservesOptimisticMessages(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	temp := h.manager.CreateTempConversation()
	assert.True(t, temp.IsTemp())
	assert.Empty(t, h.manager.Conversations(), "temp conversation must stay out of the visible list")

	_, _, err := h.manager.SendMessage(ctx, "first question")
	require.NoError(t, err)

	list := h.manager.Conversations()
	require.Len(t, list, 1, "promotion must add the conversation to the list")
	assert.NotEqual(t, temp.ID, list[0].ID)

	current := h.manager.Current()
	require.Len(t, current.Messages, 2)
	assert.Equal(t, "first question", current.Messages[0].Content)
	assert.Equal(t, model.RoleUser, current.Messages[0].Role)

	// Title generated after the first successful exchange.
	assert.Equal(t, "Title: first question", current.Title)
}

// A failed send rolls the optimistic message back and returns the error.
func TestFailedSendRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.manager.SendMessage(ctx, "seed")
	require.NoError(t, err)
	before := len(h.manager.Current().Messages)

	h.backend.failSend = true
	_, _, err = h.manager.SendMessage(ctx, "doomed question")
	require.Error(t, err)

	current := h.manager.Current()
	assert.Len(t, current.Messages, before, "optimistic message must be rolled back")
	for _, msg := range current.Messages {
		assert.NotEqual(t, "doomed question", msg.Content)
	}

	// The failure is not sticky: the next send works again.
	h.backend.failSend = false
	_, _, err = h.manager.SendMessage(ctx, "retry by the user")
	require.NoError(t, err)
	assert.Len(t, h.manager.Current().Messages, before+2)
}

// Failed promotion also rolls back and keeps the temp conversation usable.
func TestFailedPromotionRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.manager.CreateTempConversation()
	h.backend.failCreate = true

	_, _, err := h.manager.SendMessage(ctx, "question")
	require.Error(t, err)

	current := h.manager.Current()
	assert.True(t, current.IsTemp(), "temp conversation survives a failed promotion")
	assert.Empty(t, current.Messages)
	assert.Empty(t, h.manager.Conversations())
}

func TestSendRequiresLogin(t *testing.T) {
	backend := newChatBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	authMgr := auth.NewManager(client, storage.NewUserCache(t.TempDir()))
	m := NewManager(client, authMgr, nil, locale.English)

	_, _, err := m.SendMessage(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSendInFlightRejected(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.manager.SendMessage(context.Background(), "seed")
	require.NoError(t, err)

	h.manager.mu.Lock()
	h.manager.sending = true
	h.manager.mu.Unlock()

	_, _, err = h.manager.SendMessage(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSendInFlight)
}

// =============================================================================
// Creation and fallback
// =============================================================================

func TestCreateConversationFallsBackLocally(t *testing.T) {
	h := newHarness(t)
	h.backend.failCreate = true

	conv, err := h.manager.CreateConversation(context.Background())
	require.Error(t, err, "backend failure must be surfaced")
	require.NotNil(t, conv)
	assert.True(t, conv.LocalOnly, "fallback conversation must be marked local-only")
	assert.Equal(t, conv.ID, h.manager.CurrentID())
	assert.Len(t, h.manager.Conversations(), 1)
}

// =============================================================================
// Selection and fetching
// =============================================================================

func TestSelectFetchesUnknownConversation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// Seed a conversation with history, then forget it locally.
	_, _, err := h.manager.SendMessage(ctx, "What is zakat?")
	require.NoError(t, err)
	id := h.manager.CurrentID()

	h.manager.mu.Lock()
	h.manager.conversations = nil
	h.manager.current = nil
	h.manager.mu.Unlock()

	require.NoError(t, h.manager.SelectConversation(ctx, id))

	current := h.manager.Current()
	require.NotNil(t, current)
	assert.Equal(t, id, current.ID)
	// Fetched history is the split turn, sorted ascending.
	require.Len(t, current.Messages, 2)
	assert.Equal(t, model.RoleUser, current.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, current.Messages[1].Role)
	assert.Equal(t, current.Messages[0].ID, current.Messages[1].ID)
}

func TestFetchFailureLeavesStateIntact(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.manager.SendMessage(ctx, "seed")
	require.NoError(t, err)
	id := h.manager.CurrentID()

	err = h.manager.SelectConversation(ctx, "missing-id")
	require.Error(t, err)
	assert.Equal(t, id, h.manager.CurrentID(), "failed fetch must not change the current conversation")
}

// =============================================================================
// Deletion
// =============================================================================

// Deleting the current conversation selects another, or creates a fresh one
// when none remain. Ledger entries are trimmed either way.
func TestDeleteCurrentRepairsSelection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.manager.SendMessage(ctx, "first conv")
	require.NoError(t, err)
	firstID := h.manager.CurrentID()

	h.manager.CreateTempConversation()
	_, _, err = h.manager.SendMessage(ctx, "second conv")
	require.NoError(t, err)
	secondID := h.manager.CurrentID()
	require.NotEqual(t, firstID, secondID)

	// Mark a reveal in the doomed conversation.
	key := model.MessageKey{ID: "turn-x", Role: model.RoleAssistant}
	require.NoError(t, h.ledger.Mark(secondID, key))

	require.NoError(t, h.manager.DeleteConversation(ctx, secondID))

	assert.Equal(t, firstID, h.manager.CurrentID(), "delete-current must select a remaining conversation")
	assert.Contains(t, h.backend.deleted, secondID)
	assert.False(t, h.ledger.Seen(secondID, key), "ledger entries of a deleted conversation must be trimmed")

	// Delete the last one: a fresh temp conversation becomes current.
	require.NoError(t, h.manager.DeleteConversation(ctx, firstID))
	current := h.manager.Current()
	require.NotNil(t, current)
	assert.True(t, current.IsTemp())
	assert.Empty(t, h.manager.Conversations())
}

// Backend delete failure still removes the conversation locally.
func TestDeleteBestEffort(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.manager.SendMessage(ctx, "q")
	require.NoError(t, err)
	id := h.manager.CurrentID()

	h.backend.failDelete = true
	err = h.manager.DeleteConversation(ctx, id)
	require.Error(t, err, "backend failure surfaced for the toast")
	assert.Empty(t, h.manager.Conversations(), "conversation removed locally regardless")
	assert.NotEqual(t, id, h.manager.CurrentID())
}

func TestDeleteUnknownConversation(t *testing.T) {
	h := newHarness(t)
	err := h.manager.DeleteConversation(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

// =============================================================================
// Listing and titles
// =============================================================================

func TestLoadConversations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.manager.SendMessage(ctx, "q1")
	require.NoError(t, err)
	id := h.manager.CurrentID()

	require.NoError(t, h.manager.LoadConversations(ctx))
	list := h.manager.Conversations()
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	// Loaded messages survive a list refresh.
	assert.Len(t, list[0].Messages, 2)
}

func TestUpdateTitleLocalOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.manager.SendMessage(ctx, "q")
	require.NoError(t, err)
	id := h.manager.CurrentID()

	h.manager.UpdateTitle(id, "My title")
	assert.Equal(t, "My title", h.manager.Current().Title)
}
