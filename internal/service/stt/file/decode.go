// Package file reads transcripts and diarization timelines produced by
// offline tools: whisper-style transcript JSON, diarization JSON and RTTM.
package file

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"speech-transcript-formatter/internal/models"
)

type wordJSON struct {
	Word  *string `json:"word"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type segmentJSON struct {
	Start float64    `json:"start"`
	End   float64    `json:"end"`
	Text  string     `json:"text"`
	Words []wordJSON `json:"words"`
}

type transcriptJSON struct {
	Language string        `json:"language"`
	Duration float64       `json:"duration"`
	Segments []segmentJSON `json:"segments"`
}

// DecodeTranscript reads whisper-style JSON. Words may carry their text under
// "word" or "text"; "word" wins when both are present.
func DecodeTranscript(r io.Reader) (models.Transcript, error) {
	var raw transcriptJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return models.Transcript{}, fmt.Errorf("decode transcript: %w", err)
	}

	tr := models.Transcript{Language: raw.Language, Duration: raw.Duration}
	for _, s := range raw.Segments {
		seg := models.Segment{Start: s.Start, End: s.End, Text: s.Text}
		for _, w := range s.Words {
			text := w.Text
			if w.Word != nil {
				text = *w.Word
			}
			seg.Words = append(seg.Words, models.TextUnit{Start: w.Start, End: w.End, Text: text})
		}
		tr.Segments = append(tr.Segments, seg)
	}
	return tr, nil
}

type turnJSON struct {
	Start     *float64 `json:"start"`
	StartTime *float64 `json:"start_time"`
	End       *float64 `json:"end"`
	EndTime   *float64 `json:"end_time"`
	Speaker   *string  `json:"speaker"`
	SpeakerID *string  `json:"speaker_id"`
	Label     *string  `json:"label"`
}

func (t turnJSON) interval(i int) (models.TimeInterval, error) {
	start := firstFloat(t.Start, t.StartTime)
	end := firstFloat(t.End, t.EndTime)
	spk := firstString(t.Speaker, t.SpeakerID, t.Label)
	if start == nil || end == nil {
		return models.TimeInterval{}, fmt.Errorf("diarization turn %d: missing start or end", i)
	}
	if spk == nil {
		return models.TimeInterval{}, fmt.Errorf("diarization turn %d: missing speaker", i)
	}
	return models.TimeInterval{Start: *start, End: *end, Speaker: *spk}, nil
}

// DecodeTimelineJSON reads a diarization timeline given either as an array of
// turns or as {"segments": [...]}. Turns accept start/start_time, end/end_time
// and speaker/speaker_id/label keys.
func DecodeTimelineJSON(r io.Reader) ([]models.TimeInterval, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var raw []turnJSON
	switch {
	case len(data) > 0 && data[0] == '[':
		err = json.Unmarshal(data, &raw)
	default:
		var wrapped struct {
			Segments []turnJSON `json:"segments"`
		}
		err = json.Unmarshal(data, &wrapped)
		raw = wrapped.Segments
	}
	if err != nil {
		return nil, fmt.Errorf("decode diarization: %w", err)
	}

	turns := make([]models.TimeInterval, 0, len(raw))
	for i, t := range raw {
		ti, err := t.interval(i)
		if err != nil {
			return nil, err
		}
		turns = append(turns, ti)
	}
	return turns, nil
}

// DecodeRTTM reads SPEAKER records of an RTTM file:
//
//	SPEAKER <file> <chnl> <onset> <duration> <NA> <NA> <speaker> <NA> <NA>
//
// Other record types, blank lines and ";;" comments are skipped.
func DecodeRTTM(r io.Reader) ([]models.TimeInterval, error) {
	var turns []models.TimeInterval
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		fields := strings.Fields(text)
		if fields[0] != "SPEAKER" {
			continue
		}
		if len(fields) < 8 {
			return nil, fmt.Errorf("rttm line %d: expected at least 8 fields, got %d", line, len(fields))
		}
		onset, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("rttm line %d: onset: %w", line, err)
		}
		dur, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("rttm line %d: duration: %w", line, err)
		}
		turns = append(turns, models.TimeInterval{Start: onset, End: onset + dur, Speaker: fields[7]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return turns, nil
}

// LoadTranscript reads a transcript JSON file.
func LoadTranscript(path string) (models.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Transcript{}, err
	}
	defer f.Close()
	return DecodeTranscript(f)
}

// LoadTimeline reads a diarization file, choosing RTTM by the .rttm extension
// and JSON otherwise.
func LoadTimeline(path string) ([]models.TimeInterval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".rttm") {
		return DecodeRTTM(f)
	}
	return DecodeTimelineJSON(f)
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstString(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
