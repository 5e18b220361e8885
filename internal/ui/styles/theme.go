// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme bundles the prebuilt styles the views share.
type Theme struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Muted     lipgloss.Style
	ErrorText lipgloss.Style

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style

	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style
	SidebarBadge    lipgloss.Style

	StatusBar    lipgloss.Style
	StatusAccent lipgloss.Style

	InputBox   lipgloss.Style
	FormLabel  lipgloss.Style
	FormActive lipgloss.Style
}

// NewTheme builds the theme. The name selects the glamour style for
// rendered answers; the lipgloss palette adapts on its own.
func NewTheme(name string) Theme {
	return Theme{
		Title:     lipgloss.NewStyle().Foreground(Gold).Bold(true),
		Subtitle:  lipgloss.NewStyle().Foreground(TextSecondary),
		Muted:     lipgloss.NewStyle().Foreground(TextMuted),
		ErrorText: lipgloss.NewStyle().Foreground(Rose),

		UserBubble: lipgloss.NewStyle().
			Foreground(UserBubbleFg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(UserBubbleBorder).
			Padding(0, 1),
		AssistantBubble: lipgloss.NewStyle().
			Foreground(AssistantBubbleFg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(AssistantBubbleBorder).
			Padding(0, 1),

		SidebarItem: lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1),
		SidebarSelected: lipgloss.NewStyle().
			Foreground(TextInverse).
			Background(Teal).
			Bold(true).
			Padding(0, 1),
		SidebarBadge: lipgloss.NewStyle().Foreground(Amber).Italic(true),

		StatusBar: lipgloss.NewStyle().
			Foreground(TextSecondary).
			Background(SurfaceDim).
			Padding(0, 1),
		StatusAccent: lipgloss.NewStyle().Foreground(Teal).Bold(true),

		InputBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1),
		FormLabel:  lipgloss.NewStyle().Foreground(TextSecondary),
		FormActive: lipgloss.NewStyle().Foreground(Teal).Bold(true),
	}
}

// GlamourStyle maps the theme name onto a glamour standard style.
func GlamourStyle(name string) string {
	if name == "light" {
		return "light"
	}
	return "dark"
}

// ColorProfile reports the terminal's color capability.
func ColorProfile() termenv.Profile {
	return termenv.ColorProfile()
}
