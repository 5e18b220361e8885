// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/auth"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/storage"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
)

func testAuthModel(t *testing.T, handler http.Handler) Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	mgr := auth.NewManager(client, storage.NewUserCache(t.TempDir()))
	return New(mgr, styles.NewTheme("dark"), locale.English)
}

func okLoginHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1"})
		json.NewEncoder(w).Encode(map[string]any{"id": "u1", "email": "a@b.c", "username": "ahmad"})
	})
	return mux
}

func TestLoginSubmit(t *testing.T) {
	m := testAuthModel(t, okLoginHandler())

	m.inputs[fieldEmail].SetValue("a@b.c")
	m.inputs[fieldPassword].SetValue("secret")

	m2, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m2.busy)

	res, ok := cmd().(authResultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	assert.Equal(t, "ahmad", res.user.Name)

	m3, cmd := m2.Update(res)
	assert.False(t, m3.busy)
	_, ok = cmd().(LoggedInMsg)
	assert.True(t, ok)
}

func TestLoginFailureEmitsError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"detail": "bad credentials"})
	})
	m := testAuthModel(t, mux)

	m.inputs[fieldEmail].SetValue("a@b.c")
	m.inputs[fieldPassword].SetValue("wrong")

	m2, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	res := cmd().(authResultMsg)
	require.Error(t, res.err)

	_, cmd = m2.Update(res)
	msg, ok := cmd().(ErrorMsg)
	require.True(t, ok)
	assert.Contains(t, msg.Message, "bad credentials")
}

func TestEmptyFieldsDoNotSubmit(t *testing.T) {
	m := testAuthModel(t, okLoginHandler())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
}

func TestSignupRequiresUsername(t *testing.T) {
	m := testAuthModel(t, okLoginHandler())
	m.mode = modeSignup

	m.inputs[fieldEmail].SetValue("a@b.c")
	m.inputs[fieldPassword].SetValue("secret")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestModeSwitchAndFieldCycle(t *testing.T) {
	m := testAuthModel(t, okLoginHandler())
	assert.Equal(t, 2, m.fieldCount())

	m2, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, modeSignup, m2.mode)
	assert.Equal(t, 4, m2.fieldCount())
	assert.Equal(t, 0, m2.focused)

	m3, _ := m2.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m3.focused)
}

func TestSocialLoginIsStub(t *testing.T) {
	m := testAuthModel(t, okLoginHandler())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	msg, ok := cmd().(ErrorMsg)
	require.True(t, ok)
	assert.NotEmpty(t, msg.Message)
}
