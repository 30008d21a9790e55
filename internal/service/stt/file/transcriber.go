package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"speech-transcript-formatter/internal/service/stt"
)

// Transcriber serves precomputed sidecar files next to the audio:
// <base>.json for the transcript and <base>.rttm or <base>.diarization.json
// for the timeline. It lets the CLI replay offline recognizer output.
type Transcriber struct{}

// New creates a sidecar transcriber.
func New() *Transcriber {
	return &Transcriber{}
}

// Transcribe loads the sidecars of audio.Path.
func (t *Transcriber) Transcribe(ctx context.Context, audio stt.Audio, diarize bool) (*stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if audio.Path == "" {
		return nil, stt.ErrNoAudio
	}
	if _, err := os.Stat(audio.Path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", stt.ErrAudioNotFound, audio.Path)
	}
	base := strings.TrimSuffix(audio.Path, filepath.Ext(audio.Path))

	tr, err := LoadTranscript(base + ".json")
	if err != nil {
		return nil, fmt.Errorf("transcript sidecar: %w", err)
	}
	res := &stt.Result{Transcript: tr}
	if !diarize {
		return res, nil
	}

	for _, p := range []string{base + ".rttm", base + ".diarization.json"} {
		turns, err := LoadTimeline(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("diarization sidecar: %w", err)
		}
		res.Diarization = turns
		res.Diarized = true
		return res, nil
	}
	log.Warn().Str("audio", audio.Path).Msg("No diarization sidecar found")
	return res, nil
}

// Close is a no-op.
func (t *Transcriber) Close() error {
	return nil
}
