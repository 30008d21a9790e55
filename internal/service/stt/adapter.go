// Package stt defines the interface for speech-to-text collaborators that
// produce a timestamped transcript and, optionally, a diarization timeline.
package stt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"speech-transcript-formatter/internal/models"
)

var (
	// ErrAudioNotFound is returned when the audio source does not exist.
	ErrAudioNotFound = errors.New("audio file not found")
	// ErrAuthentication is returned when the provider rejects the credentials.
	ErrAuthentication = errors.New("speech provider authentication failed")
	// ErrNoAudio is returned when an Audio value names no source.
	ErrNoAudio = errors.New("no audio source given")
)

// SupportedExtensions lists the audio containers the CLI accepts without a warning.
var SupportedExtensions = []string{".m4a", ".mp3", ".wav", ".flac", ".ogg", ".webm"}

// Audio names the recording to transcribe. Exactly one source is used, in
// the order Content, URI, Path.
type Audio struct {
	Path    string
	Content []byte
	URI     string // e.g. gs://bucket/object
}

// Load returns the audio bytes, reading Path when Content is empty.
func (a Audio) Load() ([]byte, error) {
	if len(a.Content) > 0 {
		return a.Content, nil
	}
	if a.Path == "" {
		return nil, ErrNoAudio
	}
	data, err := os.ReadFile(a.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAudioNotFound, a.Path)
	}
	return data, err
}

// HasSupportedExtension reports whether path ends in a known audio extension.
func HasSupportedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Result is the collaborator output handed to the render engine.
type Result struct {
	Transcript  models.Transcript
	Diarization []models.TimeInterval
	// Diarized is false when diarization was not requested or not produced.
	Diarized bool
}

// Transcriber defines the interface for speech-to-text providers.
type Transcriber interface {
	// Transcribe recognizes the audio. Word timestamps and the speaker
	// timeline are only requested when diarize is set.
	Transcribe(ctx context.Context, audio Audio, diarize bool) (*Result, error)

	// Close releases provider resources.
	Close() error
}
