// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handlers.

package cli

import (
	"fmt"
	"os"

	"github.com/deenbot/deenbot-tui/internal/config"
)

func runConfig(d *deps, args *Args) int {
	switch args.Subcommand {
	case "", "show":
		return configShow(d)
	case "get":
		return configGet(d, args)
	case "set":
		return configSet(d, args)
	case "path":
		return configPath()
	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand: %s\n", args.Subcommand)
		return 2
	}
}

func configShow(d *deps) int {
	for _, key := range config.Keys() {
		value, err := d.cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Printf("%-24s = %s\n", key, value)
	}
	return 0
}

func configGet(d *deps, args *Args) int {
	if len(args.Positional) < 2 {
		fmt.Fprintln(os.Stderr, "usage: deenbot config get <key>")
		return 2
	}
	value, err := d.cfg.Get(args.Positional[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(value)
	return 0
}

func configSet(d *deps, args *Args) int {
	if len(args.Positional) < 3 {
		fmt.Fprintln(os.Stderr, "usage: deenbot config set <key> <value>")
		return 2
	}
	key, value := args.Positional[1], args.Positional[2]

	if err := d.cfg.Set(key, value); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := d.cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := d.cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Printf("%s = %s\n", key, value)
	return 0
}

func configPath() int {
	path, err := config.TOMLPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(path)
	return 0
}
