// Package provider selects a speech-to-text collaborator by name.
package provider

import (
	"context"
	"fmt"
	"strings"

	"speech-transcript-formatter/internal/config"
	"speech-transcript-formatter/internal/service/stt"
	"speech-transcript-formatter/internal/service/stt/file"
	"speech-transcript-formatter/internal/service/stt/google"
	"speech-transcript-formatter/internal/service/stt/mock"
)

// Names lists the accepted provider names.
var Names = []string{"google", "file", "mock"}

// New returns the transcriber named by cfg.Provider.
func New(ctx context.Context, cfg config.STTConfig) (stt.Transcriber, error) {
	switch strings.ToLower(cfg.Provider) {
	case "google":
		a, err := google.New(ctx, google.Config{
			LanguageCode:      cfg.LanguageCode,
			SampleRateHz:      cfg.SampleRateHz,
			AudioEncoding:     cfg.AudioEncoding,
			EnableDiarization: cfg.EnableDiarization,
			MinSpeakers:       cfg.MinSpeakers,
			MaxSpeakers:       cfg.MaxSpeakers,
			Model:             cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "file":
		return file.New(), nil
	case "mock", "":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q (want one of %s)", cfg.Provider, strings.Join(Names, ", "))
	}
}
