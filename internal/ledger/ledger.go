// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ledger persists which assistant messages have already been
// revealed with the typewriter animation, so reopening a conversation
// renders old answers instantly instead of replaying the effect.
//
// Entries are keyed by (conversation, message, role) and removed when
// their conversation is deleted, keeping the set bounded by live history.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/deenbot/deenbot-tui/internal/model"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("ledger closed")

// =============================================================================
// Ledger
// =============================================================================

// Ledger is the displayed-message record. An in-memory set fronts the
// database so Seen stays cheap on every render frame. Safe for concurrent
// use.
type Ledger struct {
	mu     sync.RWMutex
	db     *sql.DB
	seen   map[entryKey]bool
	closed bool
}

type entryKey struct {
	conversationID string
	messageID      string
	role           model.Role
}

// Open creates or opens the ledger database at path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS displayed_messages (
			conversation_id TEXT NOT NULL,
			message_id      TEXT NOT NULL,
			role            TEXT NOT NULL,
			displayed_at    INTEGER NOT NULL,
			PRIMARY KEY (conversation_id, message_id, role)
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	l := &Ledger{
		db:   db,
		seen: make(map[entryKey]bool),
	}
	if err := l.loadAll(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) loadAll() error {
	rows, err := l.db.Query("SELECT conversation_id, message_id, role FROM displayed_messages")
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var conv, msg, role string
		if err := rows.Scan(&conv, &msg, &role); err != nil {
			return fmt.Errorf("failed to scan ledger row: %w", err)
		}
		l.seen[entryKey{conv, msg, model.Role(role)}] = true
	}
	return rows.Err()
}

// Mark records that a message finished its reveal. Idempotent.
func (l *Ledger) Mark(conversationID string, key model.MessageKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}

	ek := entryKey{conversationID, key.ID, key.Role}
	if l.seen[ek] {
		return nil
	}

	_, err := l.db.Exec(
		"INSERT OR IGNORE INTO displayed_messages (conversation_id, message_id, role, displayed_at) VALUES (?, ?, ?, strftime('%s','now'))",
		conversationID, key.ID, string(key.Role),
	)
	if err != nil {
		return fmt.Errorf("failed to record displayed message: %w", err)
	}
	l.seen[ek] = true
	return nil
}

// Seen reports whether a message has already been revealed.
func (l *Ledger) Seen(conversationID string, key model.MessageKey) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seen[entryKey{conversationID, key.ID, key.Role}]
}

// TrimConversation drops every entry belonging to a deleted conversation.
func (l *Ledger) TrimConversation(conversationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}

	if _, err := l.db.Exec("DELETE FROM displayed_messages WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("failed to trim ledger: %w", err)
	}
	for k := range l.seen {
		if k.conversationID == conversationID {
			delete(l.seen, k)
		}
	}
	return nil
}

// Count returns the number of recorded entries.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}

// Close releases the database.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}
