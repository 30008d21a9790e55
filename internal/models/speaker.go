package models

import "fmt"

// SpeakerKind distinguishes the three possible speaker values of an attribution.
type SpeakerKind int

const (
	// SpeakerNone - diarization was not requested or is unavailable.
	SpeakerNone SpeakerKind = iota
	// SpeakerUnknown - diarization ran but nothing matched the unit.
	SpeakerUnknown
	// SpeakerKnown - the unit matched a diarization turn.
	SpeakerKnown
)

// UnknownLabel is the literal rendered for the Unknown sentinel.
const UnknownLabel = "Unknown"

// Speaker is a resolved speaker value. It is comparable with ==.
type Speaker struct {
	Kind SpeakerKind `json:"kind"`
	ID   string      `json:"id,omitempty"`
}

var (
	// NoSpeaker is the value used when diarization is not in play.
	NoSpeaker = Speaker{Kind: SpeakerNone}
	// UnknownSpeaker is the sentinel for unmatched units.
	UnknownSpeaker = Speaker{Kind: SpeakerUnknown}
)

// KnownSpeaker wraps a raw diarization identifier.
func KnownSpeaker(id string) Speaker {
	return Speaker{Kind: SpeakerKnown, ID: id}
}

// IsKnown returns true for a real diarization identifier.
func (s Speaker) IsKnown() bool {
	return s.Kind == SpeakerKnown
}

// String returns the string representation of the speaker.
func (s Speaker) String() string {
	switch s.Kind {
	case SpeakerNone:
		return "NONE"
	case SpeakerUnknown:
		return UnknownLabel
	case SpeakerKnown:
		return s.ID
	default:
		return fmt.Sprintf("INVALID(%d)", s.Kind)
	}
}

// Attribution pairs a text unit with its resolved speaker.
type Attribution struct {
	Unit    TextUnit `json:"unit"`
	Speaker Speaker  `json:"speaker"`
}

// Passage is a contiguous run of same-speaker text.
type Passage struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}
