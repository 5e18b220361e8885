// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lessons

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deenbot/deenbot-tui/internal/api"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/youtube/search":
			assert.Equal(t, "fiqh", r.URL.Query().Get("q"))
			w.Write([]byte(`{"results":[{"id":"v1","title":"Intro to Fiqh","channel":"Hasaniya","url":"https://youtu.be/v1"}]}`))
		case "/api/v1/youtube/video/v1":
			w.Write([]byte(`{"id":"v1","title":"Intro to Fiqh","duration":"45:00"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"not found"}`))
		}
	}))
	defer srv.Close()

	b := NewBrowser(api.New(srv.URL))
	ctx := context.Background()

	results, err := b.Search(ctx, "fiqh")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Intro to Fiqh", results[0].Title)

	cached, query := b.Results()
	assert.Equal(t, results, cached)
	assert.Equal(t, "fiqh", query)

	lesson, err := b.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "45:00", lesson.Duration)
}

func TestSearchEmptyQuery(t *testing.T) {
	b := NewBrowser(api.New("http://example.invalid"))
	_, err := b.Search(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}
