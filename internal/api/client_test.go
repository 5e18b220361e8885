// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func TestErrorParsing(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		sentinel error
	}{
		{"fastapi detail field", 401, `{"detail":"Invalid credentials"}`, "Invalid credentials", ErrUnauthorized},
		{"error field", 400, `{"error":"bad request"}`, "bad request", nil},
		{"not found", 404, `{"detail":"Conversation not found"}`, "Conversation not found", ErrNotFound},
		{"server error", 500, `{"detail":"internal"}`, "internal", ErrServerError},
		{"non-json body", 502, `Bad Gateway`, "", ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Whoami(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			if tt.sentinel != nil {
				assert.True(t, errors.Is(err, tt.sentinel))
			}
		})
	}
}

// A failed call issues exactly one request. Nothing in the transport retries.
func TestNoRetryOnFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail":"overloaded"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.SendMessage(context.Background(), "conv1", "u1", "q", "", "en")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "transport must not retry")

	_, err = c.Whoami(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSessionCookieCarriedAcrossCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok123", HttpOnly: true})
			w.Write([]byte(`{"id":"u1","email":"a@b.c","username":"ahmad"}`))
		case "/api/v1/auth/me":
			cookie, err := r.Cookie("session")
			if err != nil || cookie.Value != "tok123" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Not authenticated"}`))
				return
			}
			w.Write([]byte(`{"id":"u1","email":"a@b.c","username":"ahmad"}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	user, err := c.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ahmad", user.Name)
	assert.Equal(t, "email", user.Provider)

	// The session cookie from login must flow into the next call.
	user, err = c.Whoami(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestUserNameFallsBackToFullName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"u2","email":"x@y.z","full_name":"Fatima Zahra"}`))
	}))
	defer srv.Close()

	user, err := New(srv.URL).Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Fatima Zahra", user.Name)
}

func TestSendMessagePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/chat/messages", r.URL.Path)

		var body map[string]string
		require.NoError(t, jsonDecode(r, &body))
		assert.Equal(t, "conv1", body["conversation_id"])
		assert.Equal(t, "u1", body["user_id"])
		assert.Equal(t, "ما هي أركان الإسلام؟", body["question"])
		assert.Equal(t, "", body["answer"])
		assert.Equal(t, "ar", body["language"])
		_, hasCtx := body["context_id"]
		assert.False(t, hasCtx, "context_id omitted when empty")

		w.Write([]byte(`{"id":"t1","answer":"أركان الإسلام خمسة","created_at":"2025-03-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).SendMessage(context.Background(), "conv1", "u1", "ما هي أركان الإسلام؟", "", "ar")
	require.NoError(t, err)
	assert.Equal(t, "t1", res.ID)
	assert.Equal(t, "أركان الإسلام خمسة", res.Answer)
}

// The media endpoints can report failure inside a 200 body.
func TestMediaErrorInSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"unsupported format"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ProcessYouTube(context.Background(), "https://youtu.be/abc", "en")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "unsupported format", apiErr.Message)
}
