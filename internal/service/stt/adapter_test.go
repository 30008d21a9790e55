package stt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHasSupportedExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"meeting.m4a", true},
		{"MEETING.MP3", true},
		{"/tmp/a.b/c.flac", true},
		{"notes.txt", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := HasSupportedExtension(tt.path); got != tt.want {
			t.Errorf("HasSupportedExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestAudio_Load(t *testing.T) {
	if data, err := (Audio{Content: []byte("raw")}).Load(); err != nil || string(data) != "raw" {
		t.Errorf("expected inline content, got %q, %v", data, err)
	}

	path := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(path, []byte("wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	if data, err := (Audio{Path: path}).Load(); err != nil || string(data) != "wav" {
		t.Errorf("expected file content, got %q, %v", data, err)
	}

	_, err := (Audio{Path: filepath.Join(t.TempDir(), "missing.wav")}).Load()
	if !errors.Is(err, ErrAudioNotFound) {
		t.Errorf("expected ErrAudioNotFound, got %v", err)
	}

	if _, err := (Audio{}).Load(); !errors.Is(err, ErrNoAudio) {
		t.Errorf("expected ErrNoAudio, got %v", err)
	}
}
