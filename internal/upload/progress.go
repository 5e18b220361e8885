// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"time"
)

// =============================================================================
// Progress simulation
// =============================================================================

// The backend reports nothing while it transcribes; the connection simply
// stays open until the result arrives. Progress shown to the user is a
// timed guess: phases advance with elapsed time against an estimated total
// derived from the input size.

// Phase is a stage of the simulated transcription pipeline.
type Phase int

const (
	PhaseDownloading Phase = iota
	PhaseExtracting
	PhaseConverting
	PhaseTranscribing
)

const (
	// estimate parameters, tuned against observed server times
	minEstimate     = 30 * time.Second
	maxEstimate     = 15 * time.Minute
	perMB           = 1500 * time.Millisecond
	youtubeEstimate = 2 * time.Minute
)

// Progress is a snapshot of the simulation.
type Progress struct {
	Phase   Phase
	Percent float64
}

// Simulator turns elapsed wall time into a progress guess.
type Simulator struct {
	start    time.Time
	estimate time.Duration
}

// NewFileSimulator sizes the estimate from the file's byte count.
func NewFileSimulator(sizeBytes int64) *Simulator {
	est := time.Duration(sizeBytes/(1024*1024)) * perMB
	if est < minEstimate {
		est = minEstimate
	}
	if est > maxEstimate {
		est = maxEstimate
	}
	return &Simulator{start: time.Now(), estimate: est}
}

// NewYouTubeSimulator uses a flat estimate; video length is unknown until
// the server has it.
func NewYouTubeSimulator() *Simulator {
	return &Simulator{start: time.Now(), estimate: youtubeEstimate}
}

// At returns the progress guess for a given moment. Percent saturates at
// 95; the last 5 points land when the real response arrives.
func (s *Simulator) At(now time.Time) Progress {
	elapsed := now.Sub(s.start)
	pct := float64(elapsed) / float64(s.estimate) * 100
	if pct > 95 {
		pct = 95
	}
	if pct < 0 {
		pct = 0
	}

	var phase Phase
	switch {
	case pct < 30:
		phase = PhaseDownloading
	case pct < 60:
		phase = PhaseExtracting
	case pct < 85:
		phase = PhaseConverting
	default:
		phase = PhaseTranscribing
	}
	return Progress{Phase: phase, Percent: pct}
}

// Now returns the progress guess for the current moment.
func (s *Simulator) Now() Progress {
	return s.At(time.Now())
}
