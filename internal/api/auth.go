// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/deenbot/deenbot-tui/internal/model"
)

// =============================================================================
// Wire types
// =============================================================================

// userRecord is the backend's user shape. The display name may arrive as
// username or full_name depending on how the account was created.
type userRecord struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

func (u userRecord) toUser() model.User {
	name := u.Username
	if name == "" {
		name = u.FullName
	}
	return model.User{
		ID:       u.ID,
		Email:    u.Email,
		Name:     name,
		Provider: "email",
	}
}

// =============================================================================
// Operations
// =============================================================================

// Whoami returns the user for the current session cookie. Any failure,
// including network errors, means the caller should treat the session as
// logged out.
func (c *Client) Whoami(ctx context.Context) (model.User, error) {
	var rec userRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/me", nil, &rec); err != nil {
		return model.User{}, err
	}
	return rec.toUser(), nil
}

// Login authenticates with email and password. On success the response body
// carries the user object directly and the session cookie lands in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	body := map[string]string{"email": email, "password": password}
	var rec userRecord
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", body, &rec); err != nil {
		return model.User{}, err
	}
	return rec.toUser(), nil
}

// Signup registers a new account. Like Login, the user object comes back
// directly in the response body.
func (c *Client) Signup(ctx context.Context, username, email, password, fullName string) (model.User, error) {
	body := map[string]string{
		"username":  username,
		"email":     email,
		"password":  password,
		"full_name": fullName,
	}
	var rec userRecord
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/signup", body, &rec); err != nil {
		return model.User{}, err
	}
	return rec.toUser(), nil
}

// Logout invalidates the backend session. Best effort; callers clear local
// state regardless of the result.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}
