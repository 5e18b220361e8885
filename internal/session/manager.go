// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the conversation state: the visible list, the
// single current conversation, and every state transition around sending,
// promotion, deletion, and repair after backend failures.
//
// Failure policy throughout: log, repair local state best-effort, and
// return the error for the UI to surface. Nothing is retried or queued.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/auth"
	"github.com/deenbot/deenbot-tui/internal/ledger"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/model"
)

var (
	// ErrNotLoggedIn mirrors auth.ErrNotLoggedIn for send paths.
	ErrNotLoggedIn = auth.ErrNotLoggedIn

	// ErrSendInFlight rejects a second send while one is pending.
	ErrSendInFlight = errors.New("a message is already being sent")

	// ErrConversationNotFound indicates an unknown conversation ID.
	ErrConversationNotFound = errors.New("conversation not found")
)

// =============================================================================
// Manager
// =============================================================================

// Manager is the conversation state container. Safe for concurrent use;
// the mutex is released around network calls so the UI stays responsive.
type Manager struct {
	client *api.Client
	auth   *auth.Manager
	ledger *ledger.Ledger

	mu            sync.Mutex
	locale        locale.Locale
	conversations []*model.Conversation
	current       *model.Conversation
	sending       bool
}

// NewManager creates a conversation manager. The ledger may be nil when
// reveal tracking is disabled (headless CLI use).
func NewManager(client *api.Client, authMgr *auth.Manager, led *ledger.Ledger, loc locale.Locale) *Manager {
	return &Manager{
		client: client,
		auth:   authMgr,
		ledger: led,
		locale: loc,
	}
}

// SetLocale changes the language hint used for new questions.
func (m *Manager) SetLocale(loc locale.Locale) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locale = loc
}

// Locale returns the active language hint.
func (m *Manager) Locale() locale.Locale {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locale
}

// Sending reports whether a send is in flight. The UI disables submission
// while true.
func (m *Manager) Sending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sending
}

// =============================================================================
// Read access
// =============================================================================

// Conversations returns a snapshot of the visible list. Temp conversations
// are excluded until promoted.
func (m *Manager) Conversations() []*model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Conversation, len(m.conversations))
	for i, c := range m.conversations {
		out[i] = c.Clone()
	}
	return out
}

// Current returns a snapshot of the current conversation, or nil.
func (m *Manager) Current() *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	return m.current.Clone()
}

// CurrentID returns the current conversation's ID, or "".
func (m *Manager) CurrentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.ID
}

func (m *Manager) findLocked(id string) *model.Conversation {
	if m.current != nil && m.current.ID == id {
		return m.current
	}
	for _, c := range m.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// =============================================================================
// Loading
// =============================================================================

// LoadConversations replaces the visible list with the user's backend
// conversations. Messages load lazily on selection.
func (m *Manager) LoadConversations(ctx context.Context) error {
	user, ok := m.auth.User()
	if !ok {
		return ErrNotLoggedIn
	}

	recs, err := m.client.ListConversations(ctx, user.ID)
	if err != nil {
		log.Printf("session: failed to load conversations: %v", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*model.Conversation, 0, len(recs))
	for _, rec := range recs {
		// Keep already-loaded messages for conversations we know.
		if existing := m.findLocked(rec.ID); existing != nil {
			existing.Title = rec.Title
			existing.ContextID = rec.ContextID
			list = append(list, existing)
			continue
		}
		list = append(list, rec.ToConversation())
	}
	m.conversations = list
	return nil
}

// =============================================================================
// Creation
// =============================================================================

// CreateConversation creates a backend conversation and makes it current.
// When the backend call fails, a local-only fallback conversation is
// installed instead so the UI stays usable, and the error is returned for
// the toast.
func (m *Manager) CreateConversation(ctx context.Context) (*model.Conversation, error) {
	title := locale.T(m.Locale()).NewConversation

	user, ok := m.auth.User()
	if !ok {
		return m.installFallback(title), ErrNotLoggedIn
	}

	rec, err := m.client.CreateConversation(ctx, user.ID, title, "")
	if err != nil {
		log.Printf("session: create failed, installing local fallback: %v", err)
		return m.installFallback(title), err
	}

	conv := rec.ToConversation()
	m.mu.Lock()
	m.conversations = append([]*model.Conversation{conv}, m.conversations...)
	m.current = conv
	m.mu.Unlock()
	return conv.Clone(), nil
}

func (m *Manager) installFallback(title string) *model.Conversation {
	conv := model.NewLocalConversation(title)
	m.mu.Lock()
	m.conversations = append([]*model.Conversation{conv}, m.conversations...)
	m.current = conv
	m.mu.Unlock()
	return conv.Clone()
}

// CreateTempConversation makes a client-only conversation current without
// touching the network. It joins the visible list only when promoted by
// the first successful send.
func (m *Manager) CreateTempConversation() *model.Conversation {
	conv := model.NewTempConversation(locale.T(m.Locale()).NewConversation)
	m.mu.Lock()
	m.current = conv
	m.mu.Unlock()
	return conv.Clone()
}

// =============================================================================
// Selection and fetching
// =============================================================================

// SelectConversation makes a conversation current: in-memory first, then a
// backend fetch for unknown IDs. No negative caching; a failed fetch can
// be attempted again by selecting again.
func (m *Manager) SelectConversation(ctx context.Context, id string) error {
	m.mu.Lock()
	if conv := m.findLocked(id); conv != nil {
		if len(conv.Messages) > 0 || conv.LocalOnly || conv.IsTemp() {
			m.current = conv
			m.mu.Unlock()
			return nil
		}
	}
	m.mu.Unlock()

	return m.FetchConversationByID(ctx, id)
}

// FetchConversationByID loads metadata and full history from the backend,
// replaces any stale list entry, and makes the conversation current. On
// failure local state is untouched and the error is returned.
func (m *Manager) FetchConversationByID(ctx context.Context, id string) error {
	rec, err := m.client.GetConversation(ctx, id)
	if err != nil {
		log.Printf("session: failed to fetch conversation %s: %v", id, err)
		return err
	}
	turns, err := m.client.GetMessages(ctx, id)
	if err != nil {
		log.Printf("session: failed to fetch messages for %s: %v", id, err)
		return err
	}

	conv := rec.ToConversation()
	conv.Messages = model.MergeTurns(turns)
	if len(conv.Messages) > 0 {
		conv.UpdatedAt = conv.Messages[len(conv.Messages)-1].Timestamp
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	replaced := false
	for i, c := range m.conversations {
		if c.ID == id {
			m.conversations[i] = conv
			replaced = true
			break
		}
	}
	if !replaced {
		m.conversations = append([]*model.Conversation{conv}, m.conversations...)
	}
	m.current = conv
	return nil
}

// =============================================================================
// Sending
// =============================================================================

// SendMessage posts the user's question to the current conversation and
// appends the generated answer. It returns the ID of the conversation the
// exchange landed in, which may differ from the temp ID the send started
// with and from whatever is current by the time the call returns.
//
// The user message is appended optimistically before any network call. A
// temp current conversation is first promoted: the backend conversation is
// created and replaces the temp one wholesale, carrying the optimistic
// message. On any failure the optimistic message is rolled back and the
// error returned. After the first successful exchange of a new
// conversation a title is generated, falling back to a truncation of the
// question.
func (m *Manager) SendMessage(ctx context.Context, content string) (string, model.Message, error) {
	user, ok := m.auth.User()
	if !ok {
		return "", model.Message{}, ErrNotLoggedIn
	}

	m.mu.Lock()
	if m.sending {
		m.mu.Unlock()
		return "", model.Message{}, ErrSendInFlight
	}
	if m.current == nil {
		m.current = model.NewTempConversation(locale.T(m.locale).NewConversation)
	}
	conv := m.current
	optimistic := model.NewUserMessage(content)
	conv.AddMessage(optimistic)
	wasTemp := conv.IsTemp()
	lang := string(m.locale)
	m.sending = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.sending = false
		m.mu.Unlock()
	}()

	if wasTemp {
		promoted, err := m.promote(ctx, user.ID, conv)
		if err != nil {
			m.rollback(conv.ID, optimistic.Key())
			return "", model.Message{}, err
		}
		conv = promoted
	}

	res, err := m.client.SendMessage(ctx, conv.ID, user.ID, content, conv.ContextID, lang)
	if err != nil {
		log.Printf("session: send failed, rolling back optimistic message: %v", err)
		m.rollback(conv.ID, optimistic.Key())
		return conv.ID, model.Message{}, err
	}

	assistant := model.Message{
		ID:              res.ID,
		Content:         res.Answer,
		Role:            model.RoleAssistant,
		Timestamp:       res.CreatedAt,
		ContextExtracts: res.ContextExtracts,
	}
	if assistant.Timestamp.IsZero() {
		assistant.Timestamp = time.Now()
	}

	m.mu.Lock()
	firstExchange := false
	if c := m.findLocked(conv.ID); c != nil {
		c.AddMessage(assistant)
		n := 0
		for _, msg := range c.Messages {
			if msg.Role == model.RoleAssistant {
				n++
			}
		}
		firstExchange = n == 1
	}
	m.mu.Unlock()

	if firstExchange {
		m.applyGeneratedTitle(ctx, conv.ID, content, assistant.Content)
	}
	return conv.ID, assistant, nil
}

// promote creates the backend conversation for a temp one and swaps it in
// wholesale. Messages already entered, including the optimistic one, carry
// forward.
func (m *Manager) promote(ctx context.Context, userID string, temp *model.Conversation) (*model.Conversation, error) {
	rec, err := m.client.CreateConversation(ctx, userID, temp.Title, temp.ContextID)
	if err != nil {
		log.Printf("session: promotion failed for %s: %v", temp.ID, err)
		return nil, err
	}

	promoted := rec.ToConversation()

	m.mu.Lock()
	defer m.mu.Unlock()
	promoted.Messages = temp.Messages
	promoted.UpdatedAt = temp.UpdatedAt
	if m.current != nil && m.current.ID == temp.ID {
		m.current = promoted
	}
	m.conversations = append([]*model.Conversation{promoted}, m.conversations...)
	return promoted, nil
}

func (m *Manager) rollback(conversationID string, key model.MessageKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.findLocked(conversationID); c != nil {
		c.RemoveMessage(key)
	}
}

func (m *Manager) applyGeneratedTitle(ctx context.Context, conversationID, question, answer string) {
	title, err := m.client.GenerateTitle(ctx, question, answer)
	if err != nil || title == "" {
		if err != nil {
			log.Printf("session: title generation failed, using fallback: %v", err)
		}
		title = model.FallbackTitle(question)
	}
	if title == "" {
		return
	}
	m.UpdateTitle(conversationID, title)
}

// =============================================================================
// Deletion and renaming
// =============================================================================

// DeleteConversation removes a conversation. The backend delete is best
// effort and skipped for conversations the backend never saw; local
// removal and ledger trimming always happen. Deleting the current
// conversation selects the next one, or creates a fresh temp conversation
// when none remain.
func (m *Manager) DeleteConversation(ctx context.Context, id string) error {
	m.mu.Lock()
	conv := m.findLocked(id)
	if conv == nil {
		m.mu.Unlock()
		return ErrConversationNotFound
	}
	backendDelete := !conv.LocalOnly && !conv.IsTemp()
	m.mu.Unlock()

	var deleteErr error
	if _, ok := m.auth.User(); ok && backendDelete {
		if err := m.client.DeleteConversation(ctx, id); err != nil {
			log.Printf("session: backend delete failed for %s, removing locally anyway: %v", id, err)
			deleteErr = err
		}
	}

	m.mu.Lock()
	for i, c := range m.conversations {
		if c.ID == id {
			m.conversations = append(m.conversations[:i], m.conversations[i+1:]...)
			break
		}
	}
	wasCurrent := m.current != nil && m.current.ID == id
	if wasCurrent {
		if len(m.conversations) > 0 {
			m.current = m.conversations[0]
		} else {
			m.current = model.NewTempConversation(locale.T(m.locale).NewConversation)
		}
	}
	m.mu.Unlock()

	if m.ledger != nil {
		if err := m.ledger.TrimConversation(id); err != nil {
			log.Printf("session: failed to trim ledger for %s: %v", id, err)
		}
	}
	return deleteErr
}

// UpdateTitle renames a conversation locally. The backend has no rename
// endpoint.
func (m *Manager) UpdateTitle(id, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.findLocked(id); c != nil {
		c.Title = title
		c.UpdatedAt = time.Now()
	}
}
