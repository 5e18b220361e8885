// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive prompt command handler for the deenbot CLI.
//
// A line-based alternative to the TUI: questions go through the same
// session manager, so conversations, optimistic sends, and title
// generation behave exactly as in the full interface.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/deenbot/deenbot-tui/internal/config"
)

// chatPrompt wraps liner with persistent input history.
type chatPrompt struct {
	line        *liner.State
	historyFile string
}

func newChatPrompt() *chatPrompt {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.Dir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	p := &chatPrompt{line: line, historyFile: historyFile}
	if f, err := os.Open(p.historyFile); err == nil {
		p.line.ReadHistory(f)
		f.Close()
	}
	return p
}

func (p *chatPrompt) read(prompt string) (string, error) {
	input, err := p.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		p.line.AppendHistory(input)
	}
	return input, nil
}

func (p *chatPrompt) close() {
	if f, err := os.OpenFile(p.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		p.line.WriteHistory(f)
		f.Close()
	}
	p.line.Close()
}

func runChat(d *deps, args *Args) int {
	if !IsTTY() {
		fmt.Fprintln(os.Stderr, "chat requires a terminal; use `deenbot ask` for pipes")
		return 2
	}
	if _, err := requireUser(d); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	prompt := newChatPrompt()
	defer prompt.close()

	fmt.Println("deenbot chat. Type your question; /new starts a conversation, /quit exits.")
	d.session.CreateTempConversation()

	for {
		input, err := prompt.read("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return 0
			}
			return 0
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "/quit", "/exit":
			return 0
		case "/new":
			d.session.CreateTempConversation()
			fmt.Println("Started a new conversation.")
			continue
		}

		_, answer, err := d.session.SendMessage(context.Background(), input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(renderMarkdown(answer.Content, args.Quiet))
		fmt.Println()
	}
}
