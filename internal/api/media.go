// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// =============================================================================
// Wire types
// =============================================================================

// MediaResult is the outcome of a transcription job. The media endpoints can
// report failure inside a 200 body, so Err must be checked even on success.
type MediaResult struct {
	ContextID      string `json:"context_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	Topic          string `json:"topic,omitempty"`
	Preview        string `json:"preview,omitempty"`
	Err            string `json:"error,omitempty"`
}

// =============================================================================
// Operations
// =============================================================================

// UploadMedia streams a local audio or video file to the backend for
// transcription. Blocks until transcription completes; cancel through ctx.
// Size and type validation happen in the upload package before this is
// called.
func (c *Client) UploadMedia(ctx context.Context, path string) (MediaResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return MediaResult{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/media/upload-media", pr)
	if err != nil {
		return MediaResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, mw.FormDataContentType())

	resp, err := c.mediaClient.Do(req)
	if err != nil {
		return MediaResult{}, fmt.Errorf("upload failed: %w", err)
	}
	return mediaResult(resp)
}

// ProcessYouTube submits a YouTube URL for download and transcription.
// Blocks until the backend finishes; cancel through ctx.
func (c *Client) ProcessYouTube(ctx context.Context, youtubeURL, language string) (MediaResult, error) {
	body := map[string]string{"youtube_url": youtubeURL, "language": language}

	data, err := jsonBody(body)
	if err != nil {
		return MediaResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/media/process-youtube", data)
	if err != nil {
		return MediaResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, "application/json")

	resp, err := c.mediaClient.Do(req)
	if err != nil {
		return MediaResult{}, fmt.Errorf("youtube processing failed: %w", err)
	}
	return mediaResult(resp)
}

// AskContext asks a question scoped to an uploaded transcript.
func (c *Client) AskContext(ctx context.Context, question, contextID string) (string, error) {
	body := map[string]string{"question": question, "context_id": contextID}
	var res struct {
		Answer string `json:"answer"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/media/ask", body, &res); err != nil {
		return "", err
	}
	return res.Answer, nil
}

// =============================================================================
// Lessons
// =============================================================================

// Lesson is one entry from the lessons catalog.
type Lesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Duration    string `json:"duration"`
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Description string `json:"description,omitempty"`
}

// SearchLessons queries the lessons catalog.
func (c *Client) SearchLessons(ctx context.Context, query string) ([]Lesson, error) {
	var res struct {
		Results []Lesson `json:"results"`
	}
	path := "/api/v1/youtube/search?q=" + url.QueryEscape(query)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

// GetLesson fetches a single lesson entry by video ID.
func (c *Client) GetLesson(ctx context.Context, id string) (Lesson, error) {
	var lesson Lesson
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/youtube/video/"+url.PathEscape(id), nil, &lesson)
	return lesson, err
}

// =============================================================================
// Helpers
// =============================================================================

// mediaResult decodes a media response, promoting in-body error fields to
// real errors.
func mediaResult(resp *http.Response) (MediaResult, error) {
	var res MediaResult
	if err := decodeResponse(resp, &res); err != nil {
		return MediaResult{}, err
	}
	if res.Err != "" {
		return MediaResult{}, &Error{Status: resp.StatusCode, Message: res.Err}
	}
	return res, nil
}
