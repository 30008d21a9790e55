// Package schema checks collaborator inputs against the formatter's input contract.
package schema

import (
	"errors"
	"fmt"
	"math"

	"speech-transcript-formatter/internal/models"
)

// ErrContractViolation is wrapped by every ViolationError.
var ErrContractViolation = errors.New("input contract violation")

// Kind names the kind of input a violation was found in.
type Kind string

const (
	KindSegment Kind = "segment"
	KindWord    Kind = "word"
	KindTurn    Kind = "turn"
)

// ViolationError identifies the offending input by position.
// Word is -1 unless Kind is KindWord.
type ViolationError struct {
	Kind    Kind
	Segment int
	Word    int
	Turn    int
	Reason  string
}

func (e *ViolationError) Error() string {
	switch e.Kind {
	case KindWord:
		return fmt.Sprintf("segment %d word %d: %s", e.Segment, e.Word, e.Reason)
	case KindTurn:
		return fmt.Sprintf("diarization turn %d: %s", e.Turn, e.Reason)
	default:
		return fmt.Sprintf("segment %d: %s", e.Segment, e.Reason)
	}
}

func (e *ViolationError) Unwrap() error {
	return ErrContractViolation
}

// Validator checks transcripts and diarization timelines.
type Validator struct{}

// New creates a validator.
func New() *Validator {
	return &Validator{}
}

// ValidateTranscript fails fast on the first segment or word whose timestamps
// are not finite, whose end precedes its start, or whose start precedes the
// previous start. Segment starts and word starts are each non-decreasing
// across the whole transcript. Text is not checked: empty units are skipped
// downstream.
func (v *Validator) ValidateTranscript(tr models.Transcript) error {
	prevSeg, prevWord := math.Inf(-1), math.Inf(-1)
	for i, s := range tr.Segments {
		if reason := checkSpan(s.Start, s.End); reason != "" {
			return &ViolationError{Kind: KindSegment, Segment: i, Word: -1, Turn: -1, Reason: reason}
		}
		if s.Start < prevSeg {
			return &ViolationError{Kind: KindSegment, Segment: i, Word: -1, Turn: -1, Reason: backwards(s.Start, prevSeg)}
		}
		prevSeg = s.Start
		for j, w := range s.Words {
			if reason := checkSpan(w.Start, w.End); reason != "" {
				return &ViolationError{Kind: KindWord, Segment: i, Word: j, Turn: -1, Reason: reason}
			}
			if w.Start < prevWord {
				return &ViolationError{Kind: KindWord, Segment: i, Word: j, Turn: -1, Reason: backwards(w.Start, prevWord)}
			}
			prevWord = w.Start
		}
	}
	return nil
}

// ValidateTimeline applies the span checks to diarization turns. Turns may be
// unsorted and may overlap.
func (v *Validator) ValidateTimeline(turns []models.TimeInterval) error {
	for i, t := range turns {
		if reason := checkSpan(t.Start, t.End); reason != "" {
			return &ViolationError{Kind: KindTurn, Segment: -1, Word: -1, Turn: i, Reason: reason}
		}
	}
	return nil
}

func checkSpan(start, end float64) string {
	switch {
	case !finite(start):
		return fmt.Sprintf("start is not a finite number (%v)", start)
	case !finite(end):
		return fmt.Sprintf("end is not a finite number (%v)", end)
	case end < start:
		return fmt.Sprintf("end %.2f < start %.2f", end, start)
	default:
		return ""
	}
}

func backwards(start, prev float64) string {
	return fmt.Sprintf("start %.2f precedes previous start %.2f", start, prev)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
