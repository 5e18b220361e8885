// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// lessons_cmd.go - Lessons catalog search command handler.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/deenbot/deenbot-tui/internal/lessons"
	"github.com/deenbot/deenbot-tui/internal/util"
)

func runLessons(d *deps, args *Args) int {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: deenbot lessons <query>")
		return 2
	}

	browser := lessons.NewBrowser(d.client)
	results, err := browser.Search(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if args.JSON {
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	if len(results) == 0 {
		fmt.Println("No lessons found.")
		return 0
	}
	for _, lesson := range results {
		fmt.Printf("%-12s  %-8s  %s\n", lesson.ID, lesson.Duration, util.TruncateWidth(lesson.Title, 60))
		if lesson.URL != "" {
			fmt.Printf("              %s\n", lesson.URL)
		}
	}
	return 0
}
