// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the deenbot CLI.
//
// Handles "deenbot ask", which sends one question to the assistant and
// prints the rendered answer to stdout. The question does not join any
// conversation history.
//
// Examples:
//   deenbot ask "ما هي أركان الإسلام؟"
//   deenbot ask --locale en "What breaks the fast?"
//   deenbot ask --json "..."

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

func runAsk(d *deps, args *Args) int {
	question := strings.TrimSpace(args.Query)
	if question == "" {
		fmt.Fprintln(os.Stderr, "usage: deenbot ask \"question\"")
		return 2
	}

	var answer string
	var err error
	if contextID := args.Options["context"]; contextID != "" {
		// Scoped to an uploaded transcript.
		answer, err = d.client.AskContext(context.Background(), question, contextID)
	} else {
		answer, err = d.client.Ask(context.Background(), question, string(d.loc))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if args.JSON {
		out, err := json.Marshal(map[string]string{"question": question, "answer": answer})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	fmt.Println(renderMarkdown(answer, args.Quiet))
	return 0
}

// renderMarkdown pretty-prints an answer when stdout is a terminal and
// falls back to the raw text for pipes and --quiet.
func renderMarkdown(text string, quiet bool) string {
	if quiet || !ColorsEnabled() {
		return text
	}

	width := TerminalWidth()
	if width > 100 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
