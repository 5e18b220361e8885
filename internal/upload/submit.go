// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"log"
	"os"

	"github.com/deenbot/deenbot-tui/internal/api"
	"github.com/deenbot/deenbot-tui/internal/locale"
)

// Submitter runs transcription jobs against the backend.
type Submitter struct {
	client *api.Client
}

// NewSubmitter creates a submitter over the given transport.
func NewSubmitter(client *api.Client) *Submitter {
	return &Submitter{client: client}
}

// Job is a running submission: the simulator drives the progress display
// while the blocking request is in flight, and cancel aborts the request.
// Cancelling stops the local wait; work already started on the server is
// not reliably stopped.
type Job struct {
	Simulator *Simulator
	cancel    context.CancelFunc
}

// Cancel aborts the submission.
func (j *Job) Cancel() {
	j.cancel()
}

// SubmitFile validates a local file and, only if valid, uploads it for
// transcription. The returned job carries the progress simulator; done is
// closed logic-side by the caller receiving on the result channel.
func (s *Submitter) SubmitFile(ctx context.Context, path string) (*Job, <-chan Result, error) {
	if err := ValidateFile(path); err != nil {
		return nil, nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{Simulator: NewFileSimulator(info.Size()), cancel: cancel}
	results := make(chan Result, 1)

	go func() {
		defer cancel()
		res, err := s.client.UploadMedia(jobCtx, path)
		if err != nil {
			log.Printf("upload: file submission failed: %v", err)
		}
		results <- Result{Media: res, Err: err}
	}()
	return job, results, nil
}

// SubmitYouTube validates a YouTube URL and submits it for download and
// transcription.
func (s *Submitter) SubmitYouTube(ctx context.Context, rawURL string, loc locale.Locale) (*Job, <-chan Result, error) {
	if err := ValidateYouTubeURL(rawURL); err != nil {
		return nil, nil, err
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{Simulator: NewYouTubeSimulator(), cancel: cancel}
	results := make(chan Result, 1)

	go func() {
		defer cancel()
		res, err := s.client.ProcessYouTube(jobCtx, rawURL, string(loc))
		if err != nil {
			log.Printf("upload: youtube submission failed: %v", err)
		}
		results <- Result{Media: res, Err: err}
	}()
	return job, results, nil
}

// Result is the outcome of a finished submission.
type Result struct {
	Media api.MediaResult
	Err   error
}
