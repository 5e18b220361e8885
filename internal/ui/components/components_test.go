// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/deenbot/deenbot-tui/internal/model"
)

// =============================================================================
// Toasts
// =============================================================================

func TestToastManagerLifecycle(t *testing.T) {
	m := NewToastManager()
	if m.HasToasts() {
		t.Error("new manager should be empty")
	}

	id := m.AddError("send failed")
	m.AddStatus("info")
	if !m.HasToasts() {
		t.Error("expected toasts")
	}

	toasts := m.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("got %d toasts, want 2", len(toasts))
	}
	// Newest first.
	if toasts[0].Kind != ToastKindStatus {
		t.Error("newest toast should be first")
	}

	m.Dismiss(id)
	if len(m.Toasts()) != 1 {
		t.Error("dismiss did not remove toast")
	}

	m.Clear()
	if m.HasToasts() {
		t.Error("clear left toasts behind")
	}
}

func TestToastManagerCap(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 8; i++ {
		m.AddStatus("toast")
	}
	if got := len(m.Toasts()); got != 5 {
		t.Errorf("got %d toasts, want capped at 5", got)
	}
}

func TestToastExpiry(t *testing.T) {
	m := NewToastManager()
	m.AddStatus("old")
	// Backdate past its duration.
	m.mu.Lock()
	m.toasts[0].CreatedAt = time.Now().Add(-10 * time.Second)
	m.mu.Unlock()
	m.AddStatus("fresh")

	remaining := m.Tick()
	if len(remaining) != 1 || remaining[0].Message != "fresh" {
		t.Errorf("Tick kept %v", remaining)
	}
}

func TestToastDurationsByKind(t *testing.T) {
	m := NewToastManager()
	m.AddError("e")
	m.AddWarning("w")
	m.AddSuccess("s")

	byKind := map[ToastKind]time.Duration{}
	for _, toast := range m.Toasts() {
		byKind[toast.Kind] = toast.Duration
	}
	if byKind[ToastKindError] != ErrorToastDuration {
		t.Error("error toast duration wrong")
	}
	if byKind[ToastKindWarning] != WarningToastDuration {
		t.Error("warning toast duration wrong")
	}
	if byKind[ToastKindSuccess] != StatusToastDuration {
		t.Error("success toast duration wrong")
	}
}

// =============================================================================
// Reveal
// =============================================================================

func TestRevealAnimates(t *testing.T) {
	key := model.MessageKey{ID: "t1", Role: model.RoleAssistant}
	r := NewReveal("c1", key, "hello", false, 10*time.Millisecond, time.Second)

	if r.Done() {
		t.Fatal("unseen message should animate")
	}
	if got := r.Visible(); !strings.HasSuffix(got, "▌") {
		t.Errorf("partial text should carry cursor, got %q", got)
	}

	completed := false
	for i := 0; i < 10 && !completed; i++ {
		completed = r.Advance()
	}
	if !completed {
		t.Fatal("reveal never completed")
	}
	if r.Visible() != "hello" {
		t.Errorf("Visible after completion = %q", r.Visible())
	}
	if r.TickCmd() != nil {
		t.Error("done reveal should not schedule ticks")
	}
	// Completion fires exactly once.
	if r.Advance() || r.FastForward() {
		t.Error("completion signalled twice")
	}
}

func TestRevealSeenRendersInstantly(t *testing.T) {
	key := model.MessageKey{ID: "t1", Role: model.RoleAssistant}
	r := NewReveal("c1", key, "مرحبا بك", true, 10*time.Millisecond, time.Second)

	if !r.Done() {
		t.Fatal("seen message must render complete immediately")
	}
	if r.Visible() != "مرحبا بك" {
		t.Errorf("Visible = %q", r.Visible())
	}
}

func TestRevealFastForward(t *testing.T) {
	key := model.MessageKey{ID: "t1", Role: model.RoleAssistant}
	r := NewReveal("c1", key, "a long answer to fast forward", false, 10*time.Millisecond, time.Second)

	if !r.FastForward() {
		t.Fatal("fast forward should complete the reveal")
	}
	if r.Visible() != "a long answer to fast forward" {
		t.Errorf("Visible = %q", r.Visible())
	}
}

// =============================================================================
// Text wrap
// =============================================================================

func TestWrapText(t *testing.T) {
	wrapped := wrapText("one two three four five", 9)
	for _, line := range strings.Split(wrapped, "\n") {
		if len(line) > 9 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if wrapText("", 10) != "" {
		t.Error("empty input should stay empty")
	}
}
