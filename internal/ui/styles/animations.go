// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// ANIMATION TIMING
// =============================================================================

const (
	// DefaultRevealInterval is the per-character delay of the answer
	// reveal when config sets nothing.
	DefaultRevealInterval = 18 * time.Millisecond

	// DefaultRevealMax caps how long a reveal may run in total; longer
	// answers speed up to fit.
	DefaultRevealMax = 8 * time.Second

	// CursorBlinkRate matches the standard terminal cursor cadence.
	CursorBlinkRate = 530 * time.Millisecond
)

// TypingCursor is appended to partially revealed text.
const TypingCursor = "▌"

// RevealStep returns the effective per-character interval for a reveal of
// n characters: the configured interval, compressed when it would exceed
// the cap.
func RevealStep(n int, interval, max time.Duration) time.Duration {
	if n <= 0 || interval <= 0 {
		return 0
	}
	if total := time.Duration(n) * interval; total > max {
		return max / time.Duration(n)
	}
	return interval
}

// =============================================================================
// PROGRESS BAR
// =============================================================================

// RenderProgressBar draws a fixed-width bar for a 0-100 percentage.
func RenderProgressBar(width int, percent float64) string {
	if width < 4 {
		width = 4
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	inner := width - 2
	filled := int(float64(inner) * percent / 100)
	if filled > inner {
		filled = inner
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", inner-filled)
	return lipgloss.NewStyle().Foreground(Teal).Render("[" + bar + "]")
}
