// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for deenbot.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/auth"
	"github.com/deenbot/deenbot-tui/internal/config"
	"github.com/deenbot/deenbot-tui/internal/ledger"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/session"
	"github.com/deenbot/deenbot-tui/internal/storage"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdSignup
	CmdConversations
	CmdUpload
	CmdYouTube
	CmdLessons
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Global flags
	Locale  string
	Server  string
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Query      string
	Subcommand string
	Positional []string
	Raw        []string
	Options    map[string]string
	BoolOpts   map[string]bool
}

const usageText = `deenbot - bilingual Islamic knowledge assistant

Deenbot is a terminal client for an Islamic-content assistant backend.
It answers questions in Arabic or English, keeps conversation history,
and can transcribe lectures from local media files or YouTube.

Usage:
  deenbot                        Start the TUI (default)
  deenbot ask "question"         Ask a single question
    --context ID                 Scope the question to an uploaded transcript
  deenbot chat                   Interactive question prompt
  deenbot login                  Log in with email and password
  deenbot logout                 Log out and clear the cached account
  deenbot whoami                 Show the logged-in account
  deenbot signup                 Create an account
  deenbot conversations [cmd]    Conversation management
  deenbot upload <file>          Transcribe a local audio or video file
  deenbot youtube <url>          Transcribe a YouTube video
  deenbot lessons <query>        Search the lessons catalog
  deenbot config [cmd]           Configuration
  deenbot version                Show version information

Conversation Commands:
  deenbot conversations list           List conversations
  deenbot conversations show <id>      Print a conversation transcript
  deenbot conversations delete <id>    Delete a conversation
    --confirm                          Required confirmation flag
  deenbot conversations export <id>    Export a transcript
    --format md|json                   Export format (default: md)
    --output FILE                      Write to file (default: stdout)

Config Commands:
  deenbot config show                  Show the active configuration
  deenbot config get <key>             Print one value
  deenbot config set <key> <value>     Set one value
  deenbot config path                  Print the config file path

Global Flags:
  --locale ar|en    Interface and answer language (default: ar)
  --server URL      Backend base URL (overrides config)
  --json            Machine-readable output where supported
  -q, --quiet       Minimal output
  -v, --verbose     Verbose output

Examples:
  deenbot ask "ما حكم صيام يوم عرفة؟"
  deenbot ask --locale en "What are the pillars of Islam?"
  deenbot youtube "https://www.youtube.com/watch?v=..."
  deenbot conversations export conv-42 --format md --output lecture.md
`

// ParseArgs turns os.Args[1:] into an Args value.
func ParseArgs(raw []string) *Args {
	args := &Args{
		Command:  CmdTUI,
		Options:  make(map[string]string),
		BoolOpts: make(map[string]bool),
	}

	rest := make([]string, 0, len(raw))
	i := 0
	for i < len(raw) {
		switch arg := raw[i]; arg {
		case "--locale", "-L":
			if i+1 < len(raw) {
				args.Locale = raw[i+1]
				i++
			}
		case "--server":
			if i+1 < len(raw) {
				args.Server = raw[i+1]
				i++
			}
		case "--json":
			args.JSON = true
		case "--quiet", "-q":
			args.Quiet = true
		case "--verbose", "-v":
			args.Verbose = true
		case "--help", "-h":
			args.Command = CmdHelp
			return args
		case "--version":
			args.Command = CmdVersion
			return args
		default:
			rest = append(rest, arg)
		}
		i++
	}

	if len(rest) == 0 {
		return args
	}

	cmd, remaining := rest[0], rest[1:]
	parser := NewArgParser(remaining)
	positional := append([]string{}, parser.positional...)

	switch cmd {
	case "ask":
		args.Command = CmdAsk
		args.Query = strings.Join(positional, " ")
	case "chat":
		args.Command = CmdChat
	case "login":
		args.Command = CmdLogin
	case "logout":
		args.Command = CmdLogout
	case "whoami":
		args.Command = CmdWhoami
	case "signup":
		args.Command = CmdSignup
	case "conversations", "conv":
		args.Command = CmdConversations
	case "upload":
		args.Command = CmdUpload
	case "youtube", "yt":
		args.Command = CmdYouTube
	case "lessons":
		args.Command = CmdLessons
		args.Query = strings.Join(positional, " ")
	case "config":
		args.Command = CmdConfig
	case "version":
		args.Command = CmdVersion
	case "help":
		args.Command = CmdHelp
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", cmd, usageText)
		args.Command = CmdHelp
		return args
	}

	args.Subcommand = parser.Subcommand()
	args.Positional = positional
	args.Raw = remaining
	for k, v := range parser.Flags() {
		args.Options[k] = v
	}
	for k, v := range parser.BoolFlags() {
		args.BoolOpts[k] = v
	}
	return args
}

// deps is everything the command handlers share.
type deps struct {
	cfg     *config.Config
	client  *api.Client
	auth    *auth.Manager
	session *session.Manager
	ledger  *ledger.Ledger
	loc     locale.Locale
}

func buildDeps(args *Args) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if args.Locale != "" {
		cfg.UI.Locale = args.Locale
	}
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
		cfg.Server.UseLAN = false
	}
	config.SetGlobal(cfg)

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	led, err := ledger.Open(filepath.Join(dir, "displayed.db"))
	if err != nil {
		return nil, fmt.Errorf("open display ledger: %w", err)
	}

	loc := locale.Parse(cfg.UI.Locale)
	client := api.New(cfg.ResolveBaseURL())
	authMgr := auth.NewManager(client, storage.NewUserCache(dir))
	sessionMgr := session.NewManager(client, authMgr, led, loc)

	return &deps{
		cfg:     cfg,
		client:  client,
		auth:    authMgr,
		session: sessionMgr,
		ledger:  led,
		loc:     loc,
	}, nil
}

func (d *deps) close() {
	if d.ledger != nil {
		if err := d.ledger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: close ledger: %v\n", err)
		}
	}
}

// Run executes the parsed command and returns the process exit code.
func Run(args *Args) int {
	switch args.Command {
	case CmdHelp:
		fmt.Print(usageText)
		return 0
	case CmdVersion:
		fmt.Printf("deenbot %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return 0
	}

	d, err := buildDeps(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer d.close()

	switch args.Command {
	case CmdTUI:
		return runTUI(d)
	case CmdAsk:
		return runAsk(d, args)
	case CmdChat:
		return runChat(d, args)
	case CmdLogin:
		return runLogin(d, args)
	case CmdLogout:
		return runLogout(d)
	case CmdWhoami:
		return runWhoami(d, args)
	case CmdSignup:
		return runSignup(d)
	case CmdConversations:
		return runConversations(d, args)
	case CmdUpload:
		return runUpload(d, args)
	case CmdYouTube:
		return runYouTube(d, args)
	case CmdLessons:
		return runLessons(d, args)
	case CmdConfig:
		return runConfig(d, args)
	default:
		fmt.Print(usageText)
		return 0
	}
}
