// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, logout, whoami, and signup command handlers.

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

func runLogin(d *deps, args *Args) int {
	email := args.Options["email"]
	if email == "" {
		var err error
		email, err = promptLine("Email: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	user, err := d.auth.Login(context.Background(), email, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		return 1
	}
	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Email)
	return 0
}

func runLogout(d *deps) int {
	d.auth.Logout(context.Background())
	fmt.Println("Logged out.")
	return 0
}

func runWhoami(d *deps, args *Args) int {
	user, ok := d.auth.Bootstrap(context.Background())
	if !ok {
		// The server session may be gone while the cache survives;
		// Bootstrap has already dropped a stale cache at this point.
		if cached, cachedOK := d.auth.CachedUser(); cachedOK {
			fmt.Fprintf(os.Stderr, "session expired for %s; run `deenbot login`\n", cached.Email)
		} else {
			fmt.Fprintln(os.Stderr, "not logged in")
		}
		return 1
	}

	if args.JSON {
		out, err := json.MarshalIndent(user, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}
	fmt.Printf("%s <%s> via %s\n", user.Name, user.Email, user.Provider)
	return 0
}

func runSignup(d *deps) int {
	username, err := promptLine("Username: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	email, err := promptLine("Email: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fullName, err := promptLine("Full name (optional): ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if password != confirm {
		fmt.Fprintln(os.Stderr, "passwords do not match")
		return 1
	}

	user, err := d.auth.Signup(context.Background(), username, email, password, fullName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "signup failed: %v\n", err)
		return 1
	}
	fmt.Printf("Account created; logged in as %s (%s)\n", user.Name, user.Email)
	return 0
}

// requireUser resolves the logged-in user for headless commands.
func requireUser(d *deps) (string, error) {
	user, ok := d.auth.Bootstrap(context.Background())
	if !ok {
		return "", errors.New("not logged in; run `deenbot login`")
	}
	return user.ID, nil
}

// promptLine reads a trimmed line from stdin.
func promptLine(prompt string) (string, error) {
	if !IsTTY() {
		return "", errors.New("interactive input requires a terminal")
	}
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password from stdin without echoing.
func promptPassword(prompt string) (string, error) {
	if !IsTTY() {
		return "", errors.New("interactive input requires a terminal")
	}
	fmt.Print(prompt)
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()
	return strings.TrimSpace(string(passBytes)), nil
}
