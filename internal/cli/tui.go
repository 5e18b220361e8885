// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - Launches the full-screen bubbletea interface.

package cli

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/deenbot/deenbot-tui/internal/config"
	"github.com/deenbot/deenbot-tui/internal/ui/app"
)

func runTUI(d *deps) int {
	// Edits to the config file take effect without a restart; reveal
	// timing and server changes apply to the next action.
	watcher, err := config.NewWatcher(func(cfg *config.Config) {
		log.Printf("cli: config reloaded from disk")
	})
	if err == nil {
		if err := watcher.Watch(); err != nil {
			log.Printf("cli: config watch unavailable: %v", err)
		}
		defer watcher.Close()
	}

	shell := app.New(app.Deps{
		Config:     d.cfg,
		Client:     d.client,
		AuthMgr:    d.auth,
		SessionMgr: d.session,
		Ledger:     d.ledger,
	})

	p := tea.NewProgram(shell, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
