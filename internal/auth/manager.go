// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth holds the client-side authentication state. The backend
// session is an HttpOnly cookie managed by the transport; this package
// tracks the user it belongs to.
package auth

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/model"
	"github.com/deenbot/deenbot-tui/internal/storage"
)

var (
	// ErrNotLoggedIn is returned by operations that need a user.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSocialLoginUnavailable is the stub for OAuth providers.
	ErrSocialLoginUnavailable = errors.New("social login is not yet implemented")
)

// =============================================================================
// Manager
// =============================================================================

// Manager owns the authenticated user. Safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	client *api.Client
	cache  *storage.UserCache
	user   *model.User
}

// NewManager creates a manager backed by the given transport and cache.
func NewManager(client *api.Client, cache *storage.UserCache) *Manager {
	return &Manager{client: client, cache: cache}
}

// User returns the current user, or false when logged out.
func (m *Manager) User() (model.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return model.User{}, false
	}
	return *m.user, true
}

// Bootstrap restores the session at startup: whoami against the backend,
// with the cached user only as a hint. Any whoami failure means logged out,
// and the stale cache is dropped.
func (m *Manager) Bootstrap(ctx context.Context) (model.User, bool) {
	user, err := m.client.Whoami(ctx)
	if err != nil {
		log.Printf("auth: whoami failed, treating as logged out: %v", err)
		m.clearLocked()
		return model.User{}, false
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
	if err := m.cache.Save(user); err != nil {
		log.Printf("auth: failed to cache user: %v", err)
	}
	return user, true
}

// CachedUser returns the locally cached identity without touching the
// network. Display hint only.
func (m *Manager) CachedUser() (model.User, bool) {
	user, err := m.cache.Load()
	if err != nil {
		return model.User{}, false
	}
	return user, true
}

// Login authenticates and stores the resulting user. On failure the
// current state is untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (model.User, error) {
	user, err := m.client.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
	if err := m.cache.Save(user); err != nil {
		log.Printf("auth: failed to cache user: %v", err)
	}
	return user, nil
}

// Signup registers a new account and logs it in.
func (m *Manager) Signup(ctx context.Context, username, email, password, fullName string) (model.User, error) {
	user, err := m.client.Signup(ctx, username, email, password, fullName)
	if err != nil {
		return model.User{}, err
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
	if err := m.cache.Save(user); err != nil {
		log.Printf("auth: failed to cache user: %v", err)
	}
	return user, nil
}

// Logout notifies the backend best-effort, then unconditionally clears
// local state. The caller must restart the UI afterwards; chat state built
// under the old session is not trustworthy.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Logout(ctx); err != nil {
		log.Printf("auth: backend logout failed, clearing local state anyway: %v", err)
	}
	m.clearLocked()
}

// SocialLogin is a stub for OAuth providers.
func (m *Manager) SocialLogin(provider string) error {
	return ErrSocialLoginUnavailable
}

func (m *Manager) clearLocked() {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
	if err := m.cache.Clear(); err != nil {
		log.Printf("auth: failed to clear user cache: %v", err)
	}
}
