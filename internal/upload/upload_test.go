// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/locale"
)

func writeTemp(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	return path
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int
		wantErr error
	}{
		{"mp3 accepted", "lesson.mp3", 1024, nil},
		{"wav accepted", "lesson.wav", 1024, nil},
		{"mp4 accepted", "lesson.mp4", 1024, nil},
		{"pdf rejected", "notes.pdf", 1024, ErrUnsupportedType},
		{"text rejected", "notes.txt", 1024, ErrUnsupportedType},
		{"no extension rejected", "lesson", 1024, ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.file, tt.size)
			err := ValidateFile(path)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, ValidateFile(filepath.Join(t.TempDir(), "nope.mp3")))
	})

	t.Run("directory rejected", func(t *testing.T) {
		assert.ErrorIs(t, ValidateFile(t.TempDir()), ErrNotAFile)
	})
}

func TestValidateYouTubeURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=abc123",
		"https://youtube.com/watch?v=abc123",
		"https://m.youtube.com/watch?v=abc123",
		"https://youtu.be/abc123",
		"https://www.youtube.com/live/abc123",
		"https://www.youtube.com/shorts/abc123",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateYouTubeURL(u), u)
	}

	invalid := []string{
		"",
		"not a url",
		"https://vimeo.com/12345",
		"https://youtube.com/watch",
		"https://youtu.be/",
		"ftp://youtube.com/watch?v=x",
	}
	for _, u := range invalid {
		assert.ErrorIs(t, ValidateYouTubeURL(u), ErrInvalidYouTubeURL, u)
	}
}

// trippingTransport fails the test if any request goes out.
type trippingTransport struct {
	t *testing.T
}

func (tr *trippingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	tr.t.Errorf("unexpected network call to %s", r.URL)
	return nil, errors.New("network disabled")
}

// Invalid inputs are rejected before any network traffic.
func TestInvalidSubmissionsNeverTouchNetwork(t *testing.T) {
	client := api.New("http://example.invalid").WithHTTPClient(&http.Client{
		Transport: &trippingTransport{t: t},
	})
	s := NewSubmitter(client)
	ctx := context.Background()

	_, _, err := s.SubmitFile(ctx, writeTemp(t, "notes.pdf", 10))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, _, err = s.SubmitYouTube(ctx, "https://vimeo.com/1", locale.English)
	assert.ErrorIs(t, err, ErrInvalidYouTubeURL)
}

func TestSimulatorPhases(t *testing.T) {
	s := NewYouTubeSimulator()
	start := s.start

	tests := []struct {
		at    time.Duration
		phase Phase
	}{
		{0, PhaseDownloading},
		{youtubeEstimate * 29 / 100, PhaseDownloading},
		{youtubeEstimate * 45 / 100, PhaseExtracting},
		{youtubeEstimate * 70 / 100, PhaseConverting},
		{youtubeEstimate * 90 / 100, PhaseTranscribing},
		{youtubeEstimate * 3, PhaseTranscribing},
	}
	for _, tt := range tests {
		p := s.At(start.Add(tt.at))
		if p.Phase != tt.phase {
			t.Errorf("at %v: phase = %v, want %v", tt.at, p.Phase, tt.phase)
		}
		if p.Percent > 95 {
			t.Errorf("percent %v exceeds 95 before completion", p.Percent)
		}
	}
}

func TestSimulatorEstimateBounds(t *testing.T) {
	small := NewFileSimulator(1024)
	if small.estimate != minEstimate {
		t.Errorf("small file estimate = %v, want %v", small.estimate, minEstimate)
	}
	huge := NewFileSimulator(100 * 1024 * 1024 * 1024)
	if huge.estimate != maxEstimate {
		t.Errorf("huge file estimate = %v, want %v", huge.estimate, maxEstimate)
	}
}

func TestJobCancel(t *testing.T) {
	// A server that never answers; cancellation must end the job.
	blocked := make(chan struct{})
	client := api.New("http://127.0.0.1:1").WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			select {
			case <-r.Context().Done():
				return nil, r.Context().Err()
			case <-blocked:
				return nil, errors.New("unreachable")
			}
		}),
	})
	s := NewSubmitter(client)

	job, results, err := s.SubmitFile(context.Background(), writeTemp(t, "a.mp3", 10))
	require.NoError(t, err)

	job.Cancel()
	select {
	case res := <-results:
		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled job did not finish")
	}
	close(blocked)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
