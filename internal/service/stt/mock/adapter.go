// Package mock provides a mock STT adapter for testing and demos without
// cloud credentials. Each adapter serves one canned sample; successive
// adapters cycle through DefaultSamples.
package mock

import (
	"context"
	"sync"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/service/stt"
)

// Sample is one canned recognition: a word-level transcript and its timeline.
type Sample struct {
	Name        string
	Transcript  models.Transcript
	Diarization []models.TimeInterval
}

func words(start float64, text ...string) []models.TextUnit {
	out := make([]models.TextUnit, 0, len(text))
	t := start
	for _, w := range text {
		out = append(out, models.TextUnit{Start: t, End: t + 0.4, Text: w})
		t += 0.5
	}
	return out
}

func segment(start float64, text string, ws []models.TextUnit) models.Segment {
	return models.Segment{Start: start, End: ws[len(ws)-1].End, Text: text, Words: ws}
}

// DefaultSamples provides sample recordings for simulation.
var DefaultSamples = []Sample{
	{
		Name: "support-call",
		Transcript: models.Transcript{Language: "en", Segments: []models.Segment{
			segment(0, "I want to cancel my subscription.",
				words(0, "I", "want", "to", "cancel", "my", "subscription.")),
			segment(4, "Can you help me with my account?",
				words(4, "Can", "you", "help", "me", "with", "my", "account?")),
			segment(8, "Yes, please go ahead.",
				words(8, "Yes,", "please", "go", "ahead.")),
		}},
		Diarization: []models.TimeInterval{
			{Start: 0, End: 3.5, Speaker: "SPEAKER_00"},
			{Start: 3.8, End: 7.5, Speaker: "SPEAKER_01"},
			{Start: 7.8, End: 10.5, Speaker: "SPEAKER_00"},
		},
	},
	{
		Name: "standup",
		Transcript: models.Transcript{Language: "en", Segments: []models.Segment{
			segment(0, "Morning everyone.", words(0, "Morning", "everyone.")),
			segment(1.5, "I've been waiting for the build.",
				words(1.5, "I've", "been", "waiting", "for", "the", "build.")),
			segment(6, "Thank you very much.", words(6, "Thank", "you", "very", "much.")),
		}},
		Diarization: []models.TimeInterval{
			{Start: 0, End: 1.2, Speaker: "alice"},
			{Start: 1.4, End: 4.6, Speaker: "bob"},
			{Start: 5.8, End: 8.2, Speaker: "carol"},
		},
	},
}

// sampleCounter tracks which sample to use next (cycles through defaults)
var (
	sampleCounter int
	counterMu     sync.Mutex
)

// Adapter implements stt.Transcriber with canned responses.
type Adapter struct {
	mu     sync.Mutex
	sample Sample
	closed bool
}

// New creates a new mock adapter serving the next default sample.
func New() *Adapter {
	counterMu.Lock()
	idx := sampleCounter % len(DefaultSamples)
	sampleCounter++
	counterMu.Unlock()

	return NewWithSample(DefaultSamples[idx])
}

// NewWithSample creates a mock adapter serving s.
func NewWithSample(s Sample) *Adapter {
	return &Adapter{sample: s}
}

// Transcribe returns the sample. Without diarization, word timestamps and
// the timeline are dropped as a real provider would not compute them.
func (a *Adapter) Transcribe(ctx context.Context, _ stt.Audio, diarize bool) (*stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, context.Canceled
	}

	tr := a.sample.Transcript
	tr.Segments = make([]models.Segment, len(a.sample.Transcript.Segments))
	for i, s := range a.sample.Transcript.Segments {
		if diarize {
			s.Words = append([]models.TextUnit(nil), s.Words...)
		} else {
			s.Words = nil
		}
		tr.Segments[i] = s
	}

	res := &stt.Result{Transcript: tr}
	if diarize {
		res.Diarization = append([]models.TimeInterval(nil), a.sample.Diarization...)
		res.Diarized = len(res.Diarization) > 0
	}
	return res, nil
}

// Close ends the mock session.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
