// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
)

// =============================================================================
// TYPEWRITER REVEAL
// =============================================================================

// Reveal animates an assistant answer character by character. It is purely
// cosmetic: the full text is already present, only its display is gated.
// An answer whose (conversation, message, role) is in the ledger skips the
// animation and renders complete immediately.
type Reveal struct {
	ConversationID string
	Key            model.MessageKey

	runes   []rune
	shown   int
	step    time.Duration
	done    bool
	ticking bool
}

// MarkSeen records a finished reveal; satisfied by *ledger.Ledger.
type MarkSeen interface {
	Mark(conversationID string, key model.MessageKey) error
	Seen(conversationID string, key model.MessageKey) bool
}

// NewReveal builds the animation state for one answer. seen decides
// whether the message renders instantly.
func NewReveal(conversationID string, key model.MessageKey, content string, seen bool, interval, max time.Duration) *Reveal {
	runes := []rune(content)
	r := &Reveal{
		ConversationID: conversationID,
		Key:            key,
		runes:          runes,
		step:           styles.RevealStep(len(runes), interval, max),
	}
	if seen || r.step <= 0 || len(runes) == 0 {
		r.shown = len(runes)
		r.done = true
	}
	return r
}

// RevealTickMsg advances a running reveal.
type RevealTickMsg struct {
	Key model.MessageKey
}

// TickCmd schedules the next character. Returns nil once done.
func (r *Reveal) TickCmd() tea.Cmd {
	if r.done {
		r.ticking = false
		return nil
	}
	r.ticking = true
	key := r.Key
	return tea.Tick(r.step, func(time.Time) tea.Msg {
		return RevealTickMsg{Key: key}
	})
}

// StartTicks begins the tick chain for a reveal that is not yet
// animating. Returns nil when done or when a chain is already running,
// so batch starts after a conversation load never double-drive the
// animation.
func (r *Reveal) StartTicks() tea.Cmd {
	if r.done || r.ticking {
		return nil
	}
	return r.TickCmd()
}

// Advance shows one more character. Returns true when the reveal just
// completed, which is the moment to write the ledger entry.
func (r *Reveal) Advance() bool {
	if r.done {
		return false
	}
	r.shown++
	if r.shown >= len(r.runes) {
		r.shown = len(r.runes)
		r.done = true
		r.ticking = false
		return true
	}
	return false
}

// FastForward jumps to the full text. Returns true when the reveal just
// completed.
func (r *Reveal) FastForward() bool {
	if r.done {
		return false
	}
	r.shown = len(r.runes)
	r.done = true
	r.ticking = false
	return true
}

// Done reports whether the full text is visible.
func (r *Reveal) Done() bool {
	return r.done
}

// Visible returns the currently shown text, with a typing cursor while
// the animation runs.
func (r *Reveal) Visible() string {
	if r.done {
		return string(r.runes)
	}
	return string(r.runes[:r.shown]) + styles.TypingCursor
}
