// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and persists the deenbot client configuration.
//
// Configuration lives under ~/.deenbot as TOML (config.toml), with a JSON
// fallback (config.json) for installs that predate the TOML format.
// Environment variables prefixed DEENBOT_ override file values.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/deenbot/deenbot-tui/internal/util"
)

// =============================================================================
// Config structure
// =============================================================================

// Config is the full client configuration.
type Config struct {
	Server ServerConfig `toml:"server" json:"server"`
	UI     UIConfig     `toml:"ui" json:"ui"`
	Chat   ChatConfig   `toml:"chat" json:"chat"`
}

// ServerConfig selects which backend the client talks to.
type ServerConfig struct {
	// BaseURL, when set, is used as-is.
	BaseURL string `toml:"base_url" json:"base_url"`

	// LANURL is the backend address on the local network, used when UseLAN
	// is set. Lets a phone-hotspot deployment reach the shared machine.
	LANURL string `toml:"lan_url" json:"lan_url"`
	UseLAN bool   `toml:"use_lan" json:"use_lan"`
}

// UIConfig controls the terminal surface.
type UIConfig struct {
	// Locale is "ar" or "en".
	Locale string `toml:"locale" json:"locale"`
	Theme  string `toml:"theme" json:"theme"`
}

// ChatConfig tunes the chat view.
type ChatConfig struct {
	// RevealIntervalMs is the per-character delay of the answer reveal.
	RevealIntervalMs int `toml:"reveal_interval_ms" json:"reveal_interval_ms"`

	// RevealMaxSeconds caps the total reveal time for long answers.
	RevealMaxSeconds int `toml:"reveal_max_seconds" json:"reveal_max_seconds"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			LANURL: "http://192.168.100.63:8006",
		},
		UI: UIConfig{
			Locale: "ar",
			Theme:  "dark",
		},
		Chat: ChatConfig{
			RevealIntervalMs: 18,
			RevealMaxSeconds: 8,
		},
	}
}

// ResolveBaseURL returns the backend URL this configuration selects.
func (c *Config) ResolveBaseURL() string {
	if c.Server.BaseURL != "" {
		return c.Server.BaseURL
	}
	if c.Server.UseLAN && c.Server.LANURL != "" {
		return c.Server.LANURL
	}
	return "http://localhost:8006"
}

// =============================================================================
// Validation
// =============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks field values, fixing up what it safely can.
func (c *Config) Validate() error {
	switch c.UI.Locale {
	case "ar", "en":
	case "":
		c.UI.Locale = "ar"
	default:
		return &ValidationError{Field: "ui.locale", Message: "must be \"ar\" or \"en\""}
	}

	if c.Chat.RevealIntervalMs < 0 {
		return &ValidationError{Field: "chat.reveal_interval_ms", Message: "must not be negative"}
	}
	if c.Chat.RevealMaxSeconds <= 0 {
		c.Chat.RevealMaxSeconds = Default().Chat.RevealMaxSeconds
	}

	for _, f := range []struct{ name, value string }{
		{"server.base_url", c.Server.BaseURL},
		{"server.lan_url", c.Server.LANURL},
	} {
		if f.value != "" && !strings.HasPrefix(f.value, "http://") && !strings.HasPrefix(f.value, "https://") {
			return &ValidationError{Field: f.name, Message: "must start with http:// or https://"}
		}
	}
	return nil
}

// =============================================================================
// Loading
// =============================================================================

// Dir returns the configuration directory, honoring DEENBOT_CONFIG_DIR.
func Dir() (string, error) {
	if dir := os.Getenv("DEENBOT_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".deenbot"), nil
}

// TOMLPath returns the primary config file path.
func TOMLPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads configuration: TOML first, then the JSON fallback, then
// defaults. Env overrides and validation apply in every case.
func Load() (*Config, error) {
	cfg := Default()

	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	tomlPath := filepath.Join(dir, "config.toml")
	jsonPath := filepath.Join(dir, "config.json")

	if data, err := os.ReadFile(tomlPath); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
	} else if data, err := os.ReadFile(jsonPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies DEENBOT_* environment variables on top of the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DEENBOT_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("DEENBOT_LAN_URL"); v != "" {
		c.Server.LANURL = v
	}
	if v := os.Getenv("DEENBOT_USE_LAN"); v != "" {
		c.Server.UseLAN = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("DEENBOT_LOCALE"); v != "" {
		c.UI.Locale = v
	}
	if v := os.Getenv("DEENBOT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// Saving
// =============================================================================

// Save writes the configuration as TOML, atomically, with owner-only
// permissions.
func (c *Config) Save() error {
	path, err := TOMLPath()
	if err != nil {
		return err
	}

	var buf strings.Builder
	buf.WriteString("# deenbot client configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(buf.String()), 0o600)
}

// =============================================================================
// Dotted access (config get / config set)
// =============================================================================

// Get returns a field by dotted path, e.g. "ui.locale".
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "server.base_url":
		return c.Server.BaseURL, nil
	case "server.lan_url":
		return c.Server.LANURL, nil
	case "server.use_lan":
		return fmt.Sprintf("%t", c.Server.UseLAN), nil
	case "ui.locale":
		return c.UI.Locale, nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "chat.reveal_interval_ms":
		return fmt.Sprintf("%d", c.Chat.RevealIntervalMs), nil
	case "chat.reveal_max_seconds":
		return fmt.Sprintf("%d", c.Chat.RevealMaxSeconds), nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Set assigns a field by dotted path and validates the result.
func (c *Config) Set(key, value string) error {
	switch key {
	case "server.base_url":
		c.Server.BaseURL = value
	case "server.lan_url":
		c.Server.LANURL = value
	case "server.use_lan":
		c.Server.UseLAN = value == "1" || strings.EqualFold(value, "true")
	case "ui.locale":
		c.UI.Locale = value
	case "ui.theme":
		c.UI.Theme = value
	case "chat.reveal_interval_ms":
		if _, err := fmt.Sscanf(value, "%d", &c.Chat.RevealIntervalMs); err != nil {
			return fmt.Errorf("invalid integer: %q", value)
		}
	case "chat.reveal_max_seconds":
		if _, err := fmt.Sscanf(value, "%d", &c.Chat.RevealMaxSeconds); err != nil {
			return fmt.Errorf("invalid integer: %q", value)
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return c.Validate()
}

// Keys lists the settable dotted paths.
func Keys() []string {
	return []string{
		"server.base_url",
		"server.lan_url",
		"server.use_lan",
		"ui.locale",
		"ui.theme",
		"chat.reveal_interval_ms",
		"chat.reveal_max_seconds",
	}
}

// =============================================================================
// Global instance
// =============================================================================

var (
	globalMu   sync.RWMutex
	globalCfg  *Config
	globalOnce sync.Once
)

// Global returns the process-wide configuration, loading it on first use.
// Load errors fall back to defaults; the caller that needs the error should
// call Load directly.
func Global() *Config {
	globalOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalMu.Lock()
		globalCfg = cfg
		globalMu.Unlock()
	})
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalCfg
}

// SetGlobal replaces the process-wide configuration. Used by the watcher
// after a reload.
func SetGlobal(cfg *Config) {
	globalOnce.Do(func() {})
	globalMu.Lock()
	globalCfg = cfg
	globalMu.Unlock()
}

// ResetGlobalForTesting clears the global instance so tests can reload.
func ResetGlobalForTesting() {
	globalMu.Lock()
	globalCfg = nil
	globalMu.Unlock()
	globalOnce = sync.Once{}
}
