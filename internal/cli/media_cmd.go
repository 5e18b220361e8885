// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// media_cmd.go - Headless transcription command handlers.
//
// Both commands validate locally first, then block on the backend while
// printing the simulated progress line the TUI shows as a bar.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/upload"
)

func runUpload(d *deps, args *Args) int {
	if len(args.Positional) < 1 {
		fmt.Fprintln(os.Stderr, "usage: deenbot upload <file>")
		return 2
	}
	path := args.Positional[0]

	if _, err := requireUser(d); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	submitter := upload.NewSubmitter(d.client)
	job, results, err := submitter.SubmitFile(context.Background(), path)
	if err != nil {
		// Validation failures land here before any network traffic.
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return waitForTranscription(d, job, results, args.Quiet)
}

func runYouTube(d *deps, args *Args) int {
	if len(args.Positional) < 1 {
		fmt.Fprintln(os.Stderr, "usage: deenbot youtube <url>")
		return 2
	}
	rawURL := args.Positional[0]

	if _, err := requireUser(d); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	submitter := upload.NewSubmitter(d.client)
	job, results, err := submitter.SubmitYouTube(context.Background(), rawURL, d.loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return waitForTranscription(d, job, results, args.Quiet)
}

func phaseText(loc locale.Locale, phase upload.Phase) string {
	str := locale.T(loc)
	switch phase {
	case upload.PhaseDownloading:
		return str.PhaseDownloading
	case upload.PhaseExtracting:
		return str.PhaseExtracting
	case upload.PhaseConverting:
		return str.PhaseConverting
	default:
		return str.PhaseTranscribing
	}
}

// waitForTranscription blocks until the job finishes, printing progress
// to stderr so stdout stays clean for the result.
func waitForTranscription(d *deps, job *upload.Job, results <-chan upload.Result, quiet bool) int {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-interrupt:
			job.Cancel()
			fmt.Fprintln(os.Stderr, "\ncancelled")
			return 130

		case <-ticker.C:
			if quiet || !IsStdoutTTY() {
				continue
			}
			p := job.Simulator.Now()
			fmt.Fprintf(os.Stderr, "\r%-60s", fmt.Sprintf("%s %3.0f%%", phaseText(d.loc, p.Phase), p.Percent))

		case res := <-results:
			if !quiet && IsStdoutTTY() {
				fmt.Fprintf(os.Stderr, "\r%-60s\r", "")
			}
			if res.Err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", res.Err)
				return 1
			}
			printMediaResult(res.Media)
			return 0
		}
	}
}

func printMediaResult(media api.MediaResult) {
	if media.Topic != "" {
		fmt.Printf("Topic: %s\n", media.Topic)
	}
	if media.ConversationID != "" {
		fmt.Printf("Conversation: %s\n", media.ConversationID)
	}
	if media.Preview != "" {
		preview := media.Preview
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Println(strings.TrimSpace(preview))
	}
}
