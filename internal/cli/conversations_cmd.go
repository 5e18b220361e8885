// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// conversations_cmd.go - Conversation management command handlers.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/storage"
	"github.com/deenbot/deenbot-tui/internal/util"
)

func runConversations(d *deps, args *Args) int {
	if _, err := requireUser(d); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	switch args.Subcommand {
	case "", "list":
		return conversationsList(d, args)
	case "show":
		return conversationsShow(d, args)
	case "delete":
		return conversationsDelete(d, args)
	case "export":
		return conversationsExport(d, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown conversations subcommand: %s\n", args.Subcommand)
		return 2
	}
}

func conversationArg(args *Args) (string, bool) {
	if len(args.Positional) < 2 {
		return "", false
	}
	return args.Positional[1], true
}

func conversationsList(d *deps, args *Args) int {
	if err := d.session.LoadConversations(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	conversations := d.session.Conversations()
	if args.JSON {
		out, err := json.MarshalIndent(conversations, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	if len(conversations) == 0 {
		fmt.Println("No conversations.")
		return 0
	}
	for _, conv := range conversations {
		title := util.TruncateWidth(conv.Title, 50)
		fmt.Printf("%-14s  %s  %s\n", conv.ID, conv.CreatedAt.Format("2006-01-02"), title)
	}
	return 0
}

func fetchConversation(d *deps, id string) (*model.Conversation, error) {
	if err := d.session.FetchConversationByID(context.Background(), id); err != nil {
		return nil, err
	}
	conv := d.session.Current()
	if conv == nil {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	return conv, nil
}

func conversationsShow(d *deps, args *Args) int {
	id, ok := conversationArg(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "usage: deenbot conversations show <id>")
		return 2
	}

	conv, err := fetchConversation(d, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Println(storage.ExportMarkdown(conv))
	return 0
}

func conversationsDelete(d *deps, args *Args) int {
	id, ok := conversationArg(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "usage: deenbot conversations delete <id> --confirm")
		return 2
	}
	if !args.BoolOpts["confirm"] {
		fmt.Fprintln(os.Stderr, "deletion is permanent; re-run with --confirm")
		return 2
	}

	if err := d.session.LoadConversations(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := d.session.DeleteConversation(context.Background(), id); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Printf("Deleted %s\n", id)
	return 0
}

func conversationsExport(d *deps, args *Args) int {
	id, ok := conversationArg(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "usage: deenbot conversations export <id> [--format md|json] [--output FILE]")
		return 2
	}

	conv, err := fetchConversation(d, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	var out string
	switch format := args.Options["format"]; format {
	case "", "md", "markdown":
		out = storage.ExportMarkdown(conv)
	case "json":
		out, err = storage.ExportJSON(conv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown export format: %s\n", format)
		return 2
	}

	if path := args.Options["output"]; path != "" {
		if err := util.AtomicWriteFile(path, []byte(out), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Printf("Exported %s to %s\n", id, path)
		return 0
	}
	fmt.Println(out)
	return 0
}
