// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage handles local files under the config directory: the
// cached user identity and conversation exports.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/util"
)

// ErrNoCachedUser indicates no user file exists.
var ErrNoCachedUser = errors.New("no cached user")

// UserCache persists the last known user for instant startup rendering.
// The session cookie remains the source of truth; the cache is display
// state only and is dropped whenever whoami disagrees.
type UserCache struct {
	path string
}

// NewUserCache creates a cache stored in dir.
func NewUserCache(dir string) *UserCache {
	return &UserCache{path: filepath.Join(dir, "user.json")}
}

// Load reads the cached user.
func (c *UserCache) Load() (model.User, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.User{}, ErrNoCachedUser
		}
		return model.User{}, fmt.Errorf("failed to read user cache: %w", err)
	}
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		// A corrupt cache is treated as absent.
		return model.User{}, ErrNoCachedUser
	}
	return user, nil
}

// Save writes the user atomically with owner-only permissions.
func (c *UserCache) Save(user model.User) error {
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return util.AtomicWriteFile(c.path, data, 0o600)
}

// Clear removes the cached user. Missing file is not an error.
func (c *UserCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear user cache: %w", err)
	}
	return nil
}
