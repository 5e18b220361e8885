// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the chat page bindings.
type keyMap struct {
	Send         key.Binding
	NewConv      key.Binding
	NewSavedConv key.Binding
	ToggleFocus  key.Binding
	Up           key.Binding
	Down         key.Binding
	Select       key.Binding
	Delete       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	ToggleLocale key.Binding
	RefreshList  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:         key.NewBinding(key.WithKeys("enter")),
		NewConv:      key.NewBinding(key.WithKeys("ctrl+n")),
		NewSavedConv: key.NewBinding(key.WithKeys("n")),
		ToggleFocus:  key.NewBinding(key.WithKeys("tab")),
		Up:           key.NewBinding(key.WithKeys("up", "k")),
		Down:         key.NewBinding(key.WithKeys("down", "j")),
		Select:       key.NewBinding(key.WithKeys("enter")),
		Delete:       key.NewBinding(key.WithKeys("d", "delete")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		ToggleLocale: key.NewBinding(key.WithKeys("ctrl+g")),
		RefreshList:  key.NewBinding(key.WithKeys("ctrl+r")),
	}
}
