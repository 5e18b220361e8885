// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP transport to the deenbot backend.
//
// The transport is deliberately thin: one request per operation, no retry,
// no backoff, no circuit breaking. A failed call is surfaced to the caller
// once and abandoned; state repair happens above this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultTimeout bounds ordinary API calls.
	DefaultTimeout = 60 * time.Second

	// MediaTimeout bounds transcription calls, which hold the connection
	// open while the server downloads and transcribes. Generous on purpose;
	// the user can cancel through the request context.
	MediaTimeout = 30 * time.Minute

	// MaxResponseSize caps response bodies (10 MB).
	MaxResponseSize = 10 * 1024 * 1024

	// DefaultBaseURL is the local development backend.
	DefaultBaseURL = "http://localhost:8006"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrUnauthorized indicates a missing or expired session.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrServerError indicates a 5xx response.
	ErrServerError = errors.New("server error")
)

// Error is a failed backend call: the HTTP status plus the human-readable
// message the backend put in the response body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (status %d)", e.Status)
}

// Is maps statuses onto the package sentinels so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServerError:
		return e.Status >= 500
	}
	return false
}

// errorBody is the backend's error envelope. FastAPI writes "detail";
// a few media handlers write "error" in a 200 body instead.
type errorBody struct {
	Detail string `json:"detail"`
	Err    string `json:"error"`
}

func (b errorBody) message() string {
	if b.Detail != "" {
		return b.Detail
	}
	return b.Err
}

// =============================================================================
// Client
// =============================================================================

// Client talks to the deenbot backend. The session is an HttpOnly cookie;
// the jar carries it across calls. Safe for concurrent use.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	mediaClient *http.Client
	userAgent   string
}

// New creates a client for the given base URL. An empty URL selects the
// local development backend.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	jar, _ := cookiejar.New(nil)

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Jar:       jar,
			Transport: transport,
		},
		mediaClient: &http.Client{
			Timeout:   MediaTimeout,
			Jar:       jar,
			Transport: transport,
		},
		userAgent: "deenbot-tui",
	}
}

// WithHTTPClient replaces the underlying HTTP clients. Used by tests to
// install httptest transports.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	c.mediaClient = hc
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// Request plumbing
// =============================================================================

func (c *Client) setHeaders(req *http.Request, contentType string) {
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

// doJSON issues a request with an optional JSON body and decodes the JSON
// response into out (skipped when out is nil).
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, out)
}

// jsonBody encodes v for use as a request body.
func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return bytes.NewReader(data), nil
}

// decodeResponse reads the body (bounded), maps non-2xx statuses to *Error,
// and unmarshals into out.
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return &Error{Status: resp.StatusCode, Message: eb.message()}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
