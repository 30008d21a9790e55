// Package format turns text units and passages into readable paragraphs and
// serializes the resulting document.
package format

import (
	"errors"
	"fmt"
	"strings"

	"speech-transcript-formatter/internal/models"
)

// PolicyKind selects the paragraph break heuristic for non-diarized text.
type PolicyKind int

const (
	// PolicySentences breaks on a pause or once the paragraph holds MaxSentences
	// sentence-terminal marks.
	PolicySentences PolicyKind = iota
	// PolicyWords breaks on a pause, but only once the paragraph holds MinWords words.
	PolicyWords
	// PolicyAuto picks one of the above per run, see Policy.Select.
	PolicyAuto
)

// String returns the string representation of the policy kind.
func (k PolicyKind) String() string {
	switch k {
	case PolicySentences:
		return "sentences"
	case PolicyWords:
		return "words"
	case PolicyAuto:
		return "auto"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", k)
	}
}

// ErrUnknownPolicy is returned by ParsePolicyKind for unrecognized names.
var ErrUnknownPolicy = errors.New("unknown paragraph policy")

// ParsePolicyKind parses "sentences", "words" or "auto" (case-insensitive).
func ParsePolicyKind(s string) (PolicyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sentences", "sentence":
		return PolicySentences, nil
	case "words", "word":
		return PolicyWords, nil
	case "auto":
		return PolicyAuto, nil
	default:
		return PolicySentences, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Policy holds the knobs of both break heuristics; Kind decides which is active.
type Policy struct {
	Kind PolicyKind

	// Sentence policy.
	PauseSeconds float64
	MaxSentences int // cap on terminal marks (. ? !) per paragraph; 0 disables it

	// Word policy.
	WordPauseSeconds float64
	MinWords         int
}

// DefaultPolicy returns the pause+sentence-count policy with a 2s pause and a 5 sentence cap,
// carrying the word policy defaults (1s pause, 10 words) for callers that switch Kind.
func DefaultPolicy() Policy {
	return Policy{
		Kind:             PolicySentences,
		PauseSeconds:     2.0,
		MaxSentences:     5,
		WordPauseSeconds: 1.0,
		MinWords:         10,
	}
}

// Select resolves PolicyAuto for one run. Word-level sources and sources with
// any sentence punctuation use the sentence policy; coarse unpunctuated
// sources use the word policy. Other kinds are returned unchanged.
func (p Policy) Select(g models.Granularity, units []models.TextUnit) Policy {
	if p.Kind != PolicyAuto {
		return p
	}
	p.Kind = PolicyWords
	if g == models.GranularityWord {
		p.Kind = PolicySentences
		return p
	}
	for _, u := range units {
		if countTerminalMarks(u.Text) > 0 {
			p.Kind = PolicySentences
			break
		}
	}
	return p
}

func isTerminal(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

// countTerminalMarks counts every sentence-terminal punctuation mark, so
// "..." counts three.
func countTerminalMarks(text string) int {
	n := 0
	for _, r := range text {
		if isTerminal(r) {
			n++
		}
	}
	return n
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
