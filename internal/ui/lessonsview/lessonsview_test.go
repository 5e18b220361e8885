// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lessonsview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/lessons"
	"github.com/deenbot/deenbot-tui/internal/locale"
	"github.com/deenbot/deenbot-tui/internal/ui/styles"
)

func testLessonsModel(t *testing.T) Model {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/youtube/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "none" {
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{
			{"id": "l1", "title": "Tafsir of Surah Al-Kahf", "channel": "Lessons", "duration": "45:00", "url": "https://www.youtube.com/watch?v=kahf1"},
			{"id": "l2", "title": "Seerah part 3", "channel": "Lessons", "duration": "60:00", "url": "https://www.youtube.com/watch?v=seerah3"},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(lessons.NewBrowser(api.New(srv.URL)), styles.NewTheme("dark"), locale.English)
}

func TestSearchPopulatesResults(t *testing.T) {
	m := testLessonsModel(t)

	m.search.SetValue("tafsir")
	m2, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m2.busy)

	res := cmd().(searchResultMsg)
	require.NoError(t, res.err)

	m3, _ := m2.Update(res)
	assert.False(t, m3.busy)
	require.Len(t, m3.results, 2)
	assert.Equal(t, focusResults, m3.focus, "results take focus after a hit")
}

func TestEmptyQueryDoesNotSearch(t *testing.T) {
	m := testLessonsModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestSelectEmitsLesson(t *testing.T) {
	m := testLessonsModel(t)

	m.search.SetValue("tafsir")
	m2, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	res := cmd().(searchResultMsg)
	m2, _ = m2.Update(res)

	// Move to the second result and pick it.
	m3, _ := m2.Update(tea.KeyMsg{Type: tea.KeyDown})
	m4, cmd := m3.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	sel, ok := cmd().(SelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "l2", sel.Lesson.ID)
	assert.Equal(t, 1, m4.selected)
}

func TestCursorClampsAtEnds(t *testing.T) {
	m := testLessonsModel(t)

	m.search.SetValue("tafsir")
	m2, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m2, _ = m2.Update(cmd().(searchResultMsg))

	m3, _ := m2.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m3.selected)

	m3, _ = m3.Update(tea.KeyMsg{Type: tea.KeyDown})
	m3, _ = m3.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m3.selected)
}
