// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload submits audio, video, and YouTube lessons for
// transcription. Validation is local and synchronous: a file that is too
// large or of the wrong type is rejected before any network traffic.
package upload

import (
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the upload limit enforced client-side (200 MB).
const MaxFileSize = 200 * 1024 * 1024

var (
	ErrFileTooLarge      = errors.New("file exceeds the 200 MB upload limit")
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrNotAFile          = errors.New("not a regular file")
	ErrInvalidYouTubeURL = errors.New("not a valid YouTube URL")
)

// allowedTypes is the backend's transcription allowlist.
var allowedTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/wav":   true,
	"audio/wave":  true,
	"audio/x-wav": true,
	"video/mp4":   true,
}

// extensionTypes maps known extensions directly; the system mime table is
// the fallback for anything else.
var extensionTypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
	".mp4": "video/mp4",
}

// ContentType returns the MIME type inferred from the file extension.
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	t := mime.TypeByExtension(ext)
	if i := strings.Index(t, ";"); i >= 0 {
		t = t[:i]
	}
	return t
}

// ValidateFile checks a local file against the size limit and type
// allowlist. Returns nil only for files the backend would accept.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotAFile, path)
	}
	if info.Size() > MaxFileSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}
	if t := ContentType(path); !allowedTypes[t] {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
	return nil
}

// ValidateYouTubeURL accepts youtube.com watch URLs and youtu.be short
// links.
func ValidateYouTubeURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidYouTubeURL
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if u.Path == "/watch" && u.Query().Get("v") != "" {
			return nil
		}
		if strings.HasPrefix(u.Path, "/live/") || strings.HasPrefix(u.Path, "/shorts/") {
			return nil
		}
	case "youtu.be":
		if len(strings.Trim(u.Path, "/")) > 0 {
			return nil
		}
	}
	return ErrInvalidYouTubeURL
}
