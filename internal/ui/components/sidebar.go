// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
	"github.com/deenbot/deenbot-tui/internal/util"
)

// Sidebar renders the conversation list.
type Sidebar struct {
	Width    int
	Selected int
	theme    styles.Theme
	strings  locale.Strings
}

// NewSidebar creates a sidebar of the given width.
func NewSidebar(width int, theme styles.Theme, str locale.Strings) Sidebar {
	return Sidebar{Width: width, theme: theme, strings: str}
}

// SetStrings swaps the localized chrome after a locale change.
func (s *Sidebar) SetStrings(str locale.Strings) {
	s.strings = str
}

// Move shifts the selection, clamped to the list.
func (s *Sidebar) Move(delta, count int) {
	s.Selected += delta
	if s.Selected < 0 {
		s.Selected = 0
	}
	if s.Selected >= count {
		s.Selected = count - 1
	}
	if s.Selected < 0 {
		s.Selected = 0
	}
}

// Render draws the list. The current conversation carries the selection
// style; local-only fallbacks carry a badge.
func (s Sidebar) Render(conversations []*model.Conversation, currentID string, height int) string {
	var b strings.Builder
	b.WriteString(s.theme.Title.Render(s.strings.Conversations))
	b.WriteString("\n\n")

	inner := s.Width - 4
	for i, conv := range conversations {
		if i >= height-3 {
			break
		}
		title := conv.Title
		if title == "" {
			title = s.strings.NewConversation
		}
		title = util.TruncateWidth(title, inner)

		style := s.theme.SidebarItem
		if conv.ID == currentID || i == s.Selected {
			style = s.theme.SidebarSelected
		}
		line := style.Render(title)
		if conv.LocalOnly {
			line += " " + s.theme.SidebarBadge.Render(s.strings.LocalOnlyBadge)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Width(s.Width).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(styles.Overlay).
		Render(b.String())
}
