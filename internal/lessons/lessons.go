// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lessons backs the lessons browser: searching the curated video
// catalog and handing a chosen lesson to the transcription pipeline.
package lessons

import (
	"context"
	"errors"
	"sync"

	"github.com/deenbot/deenbot-tui/internal/api"
)

// ErrEmptyQuery rejects blank searches before touching the backend.
var ErrEmptyQuery = errors.New("search query is empty")

// Browser searches the lessons catalog. The last result set is kept so the
// view can re-render without a refetch.
type Browser struct {
	client *api.Client

	mu      sync.Mutex
	results []api.Lesson
	query   string
}

// NewBrowser creates a browser over the given transport.
func NewBrowser(client *api.Client) *Browser {
	return &Browser{client: client}
}

// Search queries the catalog and replaces the cached result set.
func (b *Browser) Search(ctx context.Context, query string) ([]api.Lesson, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	results, err := b.client.SearchLessons(ctx, query)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.results = results
	b.query = query
	b.mu.Unlock()
	return results, nil
}

// Results returns the cached result set and the query that produced it.
func (b *Browser) Results() ([]api.Lesson, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]api.Lesson, len(b.results))
	copy(out, b.results)
	return out, b.query
}

// Get fetches one lesson's details by video ID.
func (b *Browser) Get(ctx context.Context, id string) (api.Lesson, error) {
	return b.client.GetLesson(ctx, id)
}
