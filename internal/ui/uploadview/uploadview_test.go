// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package uploadview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
	"github.com/deenbot/deenbot-tui/internal/upload"
)

func testUploadModel(t *testing.T, handler http.Handler) Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(upload.NewSubmitter(api.New(srv.URL)), styles.NewTheme("dark"), locale.English)
}

func TestInvalidFileRejectedLocally(t *testing.T) {
	// Any request arriving here fails the test.
	tripped := false
	m := testUploadModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tripped = true
	}))

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))
	m.fileInput.SetValue(path)

	m2, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(ErrorMsg)
	require.True(t, ok)
	assert.NotEmpty(t, msg.Message)
	assert.Nil(t, m2.job)
	assert.False(t, tripped)
}

func TestInvalidYouTubeURLRejectedLocally(t *testing.T) {
	tripped := false
	m := testUploadModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tripped = true
	}))

	m.focused = fieldYouTube
	m.youtubeInput.SetValue("https://vimeo.com/12345")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, ok := cmd().(ErrorMsg)
	assert.True(t, ok)
	assert.False(t, tripped)
}

func TestYouTubeSubmitAndResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/media/process-youtube", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"context_id": "ctx-1", "conversation_id": "conv-9", "topic": "tafsir",
		})
	})
	m := testUploadModel(t, mux)

	m.focused = fieldYouTube
	m.youtubeInput.SetValue("https://www.youtube.com/watch?v=abc123")

	m2, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m2.job, "valid submission starts a job")
	require.NotNil(t, cmd)

	// The batch contains the result waiter; drain the channel directly.
	res := <-m2.results
	require.NoError(t, res.Err)

	m3, cmd := m2.Update(jobDoneMsg{result: res})
	assert.Nil(t, m3.job)
	require.NotNil(t, cmd)
	done, ok := cmd().(DoneMsg)
	require.True(t, ok)
	assert.Equal(t, "conv-9", done.Media.ConversationID)
}

func TestBackendErrorBodySurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/media/process-youtube", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "video unavailable"})
	})
	m := testUploadModel(t, mux)

	m.focused = fieldYouTube
	m.youtubeInput.SetValue("https://youtu.be/abc123")

	m2, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m2.job)
	res := <-m2.results
	require.Error(t, res.Err)

	_, cmd := m2.Update(jobDoneMsg{result: res})
	msg, ok := cmd().(ErrorMsg)
	require.True(t, ok)
	assert.Contains(t, msg.Message, "video unavailable")
}

func TestKeysIgnoredWhileBusyExceptCancel(t *testing.T) {
	mux := http.NewServeMux()
	blocked := make(chan struct{})
	mux.HandleFunc("/api/v1/media/process-youtube", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-blocked:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(blocked) })
	m := testUploadModel(t, mux)

	m.focused = fieldYouTube
	m.youtubeInput.SetValue("https://www.youtube.com/watch?v=abc123")
	m2, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m2.job)

	// Typing does nothing while in flight.
	before := m2.youtubeInput.Value()
	m3, _ := m2.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, before, m3.youtubeInput.Value())

	// Cancel aborts the in-flight request.
	m3.Update(tea.KeyMsg{Type: tea.KeyEsc})
	res := <-m3.results
	require.Error(t, res.Err)
}
