// deenbot TUI - a terminal client for a bilingual Islamic knowledge
// assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/deenbot/deenbot-tui/internal/cli"
	"github.com/deenbot/deenbot-tui/internal/config"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

// setupLogging sends the standard logger to a file so stray warnings
// never corrupt the TUI's alternate screen.
func setupLogging() func() {
	dir, err := config.Dir()
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "deenbot.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags)
	return func() { f.Close() }
}

func main() {
	closeLog := setupLogging()
	defer closeLog()

	args := cli.ParseArgs(os.Args[1:])
	os.Exit(cli.Run(args))
}
