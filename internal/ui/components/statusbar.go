// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
	"github.com/deenbot/deenbot-tui/internal/util"
)

// StatusBar is the bottom chrome line: user, locale, conversation count,
// and the send indicator.
type StatusBar struct {
	theme styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme styles.Theme) StatusBar {
	return StatusBar{theme: theme}
}

// StatusState is the snapshot the bar renders from.
type StatusState struct {
	UserName      string
	Locale        locale.Locale
	Conversations int
	Sending       bool
	Connected     bool
}

// Render draws the bar at the given width.
func (s StatusBar) Render(state StatusState, width int) string {
	var parts []string

	conn := styles.StatusIndicators.Online
	if !state.Connected {
		conn = styles.StatusIndicators.Offline
	}
	parts = append(parts, s.theme.StatusAccent.Render(conn+" deenbot"))

	if state.UserName != "" {
		parts = append(parts, state.UserName)
	}
	parts = append(parts, strings.ToUpper(string(state.Locale)))
	parts = append(parts, fmt.Sprintf("%d", state.Conversations))
	if state.Sending {
		parts = append(parts, locale.T(state.Locale).Thinking)
	}

	line := strings.Join(parts, "  │  ")
	return s.theme.StatusBar.Width(width).Render(util.TruncateWidth(line, width-2))
}
