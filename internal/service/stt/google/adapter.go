// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/service/stt"
)

// Config holds Google STT configuration.
type Config struct {
	LanguageCode      string
	SampleRateHz      int
	AudioEncoding     string // LINEAR16, MULAW, FLAC, etc.
	EnableDiarization bool
	MinSpeakers       int
	MaxSpeakers       int
	Model             string // empty uses the provider default
}

// DefaultConfig returns the default Google STT configuration.
func DefaultConfig() Config {
	return Config{
		LanguageCode:      "en-US",
		SampleRateHz:      16000,
		AudioEncoding:     "LINEAR16",
		EnableDiarization: true,
		MinSpeakers:       1,
		MaxSpeakers:       6,
	}
}

// Adapter implements stt.Transcriber using Google Cloud Speech-to-Text.
type Adapter struct {
	client *speech.Client
	cfg    Config
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return &Adapter{client: c, cfg: cfg}, nil
}

// Transcribe runs a long-running recognition and waits for the result.
func (a *Adapter) Transcribe(ctx context.Context, audio stt.Audio, diarize bool) (*stt.Result, error) {
	src, err := recognitionAudio(audio)
	if err != nil {
		return nil, err
	}
	diarize = diarize && a.cfg.EnableDiarization

	op, err := a.client.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{
		Config: a.recognitionConfig(diarize),
		Audio:  src,
	})
	if err != nil {
		return nil, classify(err)
	}
	log.Info().Str("operation", op.Name()).Bool("diarize", diarize).Msg("Recognition started")

	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return convert(resp.GetResults(), diarize), nil
}

// Close closes the underlying client.
func (a *Adapter) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

func (a *Adapter) recognitionConfig(diarize bool) *speechpb.RecognitionConfig {
	rc := &speechpb.RecognitionConfig{
		Encoding:                   parseAudioEncoding(a.cfg.AudioEncoding),
		SampleRateHertz:            int32(a.cfg.SampleRateHz),
		LanguageCode:               a.cfg.LanguageCode,
		EnableAutomaticPunctuation: true,
		// Word timestamps are only needed to attribute speakers.
		EnableWordTimeOffsets: diarize,
		Model:                 a.cfg.Model,
	}
	if diarize {
		rc.DiarizationConfig = &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
			MinSpeakerCount:          int32(a.cfg.MinSpeakers),
			MaxSpeakerCount:          int32(a.cfg.MaxSpeakers),
		}
	}
	return rc
}

func recognitionAudio(audio stt.Audio) (*speechpb.RecognitionAudio, error) {
	if len(audio.Content) == 0 && audio.URI != "" {
		return &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Uri{Uri: audio.URI},
		}, nil
	}
	data, err := audio.Load()
	if err != nil {
		return nil, err
	}
	return &speechpb.RecognitionAudio{
		AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
	}, nil
}

// convert maps recognition results to a transcript and, when diarizing, a
// timeline. With diarization on, the last result repeats every word of the
// audio with speaker labels; it feeds the timeline and is not a segment.
func convert(results []*speechpb.SpeechRecognitionResult, diarize bool) *stt.Result {
	res := &stt.Result{}
	segResults := results
	if diarize && len(results) > 0 {
		segResults = results[:len(results)-1]
		if turns := turnsFrom(results[len(results)-1]); len(turns) > 0 {
			res.Diarization = turns
			res.Diarized = true
		}
	}

	prevEnd := 0.0
	for _, r := range segResults {
		if len(r.GetAlternatives()) == 0 {
			continue
		}
		alt := r.GetAlternatives()[0]
		seg := models.Segment{
			Start: prevEnd,
			End:   r.GetResultEndTime().AsDuration().Seconds(),
			Text:  strings.TrimSpace(alt.GetTranscript()),
		}
		for _, w := range alt.GetWords() {
			seg.Words = append(seg.Words, models.TextUnit{
				Start: w.GetStartTime().AsDuration().Seconds(),
				End:   w.GetEndTime().AsDuration().Seconds(),
				Text:  w.GetWord(),
			})
		}
		if n := len(seg.Words); n > 0 {
			seg.Start = seg.Words[0].Start
			seg.End = seg.Words[n-1].End
		}
		if seg.End < seg.Start {
			seg.End = seg.Start
		}
		prevEnd = seg.End
		res.Transcript.Segments = append(res.Transcript.Segments, seg)
	}
	if n := len(res.Transcript.Segments); n > 0 {
		res.Transcript.Duration = res.Transcript.Segments[n-1].End
	}
	return res
}

// turnsFrom merges consecutive same-speaker words of the aggregate result into turns.
func turnsFrom(r *speechpb.SpeechRecognitionResult) []models.TimeInterval {
	if len(r.GetAlternatives()) == 0 {
		return nil
	}
	var turns []models.TimeInterval
	for _, w := range r.GetAlternatives()[0].GetWords() {
		spk := speakerOf(w)
		if spk == "" {
			continue
		}
		start := w.GetStartTime().AsDuration().Seconds()
		end := w.GetEndTime().AsDuration().Seconds()
		if n := len(turns); n > 0 && turns[n-1].Speaker == spk {
			turns[n-1].End = max(turns[n-1].End, end)
			continue
		}
		turns = append(turns, models.TimeInterval{Start: start, End: end, Speaker: spk})
	}
	return turns
}

func speakerOf(w *speechpb.WordInfo) string {
	if l := w.GetSpeakerLabel(); l != "" {
		return l
	}
	//nolint:staticcheck // SpeakerTag is still populated by the v1 API.
	if tag := w.GetSpeakerTag(); tag > 0 {
		return strconv.Itoa(int(tag))
	}
	return ""
}

// classify wraps authentication failures with an actionable message.
func classify(err error) error {
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: set GOOGLE_APPLICATION_CREDENTIALS to a service account key with Speech-to-Text access: %v",
			stt.ErrAuthentication, err)
	}
	if strings.Contains(err.Error(), "could not find default credentials") {
		return fmt.Errorf("%w: run 'gcloud auth application-default login' or set GOOGLE_APPLICATION_CREDENTIALS: %v",
			stt.ErrAuthentication, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("recognition timed out: %w", err)
	}
	return err
}

// parseAudioEncoding converts a string to a Google Speech audio encoding.
func parseAudioEncoding(encoding string) speechpb.RecognitionConfig_AudioEncoding {
	switch encoding {
	case "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC
	case "AMR":
		return speechpb.RecognitionConfig_AMR
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}
