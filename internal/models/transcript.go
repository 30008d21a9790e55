// Package models defines the data structures shared by the transcript formatter.
package models

import "strings"

// TextUnit is a timestamped piece of recognized text: a word or a segment.
type TextUnit struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Midpoint returns the center of the unit's time span.
func (u TextUnit) Midpoint() float64 {
	return (u.Start + u.End) / 2
}

// Segment is a segment-level unit that may carry word-level units.
type Segment struct {
	Start float64    `json:"start"`
	End   float64    `json:"end"`
	Text  string     `json:"text"`
	Words []TextUnit `json:"words,omitempty"`
}

// Unit returns the segment as a coarse text unit.
func (s Segment) Unit() TextUnit {
	return TextUnit{Start: s.Start, End: s.End, Text: s.Text}
}

// Transcript is the raw recognizer output, ordered by start time.
type Transcript struct {
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Segments []Segment `json:"segments"`
}

// Granularity identifies which timestamp resolution a transcript offers.
type Granularity int

const (
	// GranularitySegment - only segment-level timestamps are usable.
	GranularitySegment Granularity = iota
	// GranularityWord - at least one non-empty word-level timestamp exists.
	GranularityWord
)

// String returns the string representation of the granularity.
func (g Granularity) String() string {
	if g == GranularityWord {
		return "word"
	}
	return "segment"
}

// Granularity reports GranularityWord when any segment carries a word with text.
func (t Transcript) Granularity() Granularity {
	for _, s := range t.Segments {
		for _, w := range s.Words {
			if strings.TrimSpace(w.Text) != "" {
				return GranularityWord
			}
		}
	}
	return GranularitySegment
}

// Words flattens all word-level units in order, trimming text and skipping empty words.
func (t Transcript) Words() []TextUnit {
	var out []TextUnit
	for _, s := range t.Segments {
		for _, w := range s.Words {
			text := strings.TrimSpace(w.Text)
			if text == "" {
				continue
			}
			out = append(out, TextUnit{Start: w.Start, End: w.End, Text: text})
		}
	}
	return out
}

// SegmentUnits returns the segment-level units in order, trimming text and skipping empty segments.
func (t Transcript) SegmentUnits() []TextUnit {
	out := make([]TextUnit, 0, len(t.Segments))
	for _, s := range t.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		out = append(out, TextUnit{Start: s.Start, End: s.End, Text: text})
	}
	return out
}

// TimeInterval is one diarization turn.
type TimeInterval struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Overlap returns the length of the intersection between the interval and [start, end].
func (ti TimeInterval) Overlap(start, end float64) float64 {
	return max(0, min(end, ti.End)-max(start, ti.Start))
}

// Contains reports whether t lies inside the interval, bounds included.
func (ti TimeInterval) Contains(t float64) bool {
	return ti.Start <= t && t <= ti.End
}

// Distance returns the distance from t to the nearer interval endpoint.
func (ti TimeInterval) Distance(t float64) float64 {
	return min(abs(t-ti.Start), abs(t-ti.End))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
