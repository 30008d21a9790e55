// Package label assigns friendly, first-seen-order names to diarization speakers.
package label

import (
	"fmt"

	"speech-transcript-formatter/internal/models"
)

// Namer hands out "Speaker N" labels in the order identifiers are first seen.
// It is stateful and meant for one rendering pass; it is not safe for
// concurrent use.
type Namer struct {
	counter int
	names   map[string]string
	order   []string
}

// New creates a namer whose first label is "Speaker 1".
func New() *Namer {
	return &Namer{names: make(map[string]string)}
}

// Label returns the display label for s and whether a label should be shown.
//
//   - known identifiers get "Speaker N", allocated on first sight
//   - the Unknown sentinel renders as "Unknown" and allocates nothing
//   - NoSpeaker has no label
func (n *Namer) Label(s models.Speaker) (string, bool) {
	switch s.Kind {
	case models.SpeakerKnown:
		if name, ok := n.names[s.ID]; ok {
			return name, true
		}
		n.counter++
		name := fmt.Sprintf("Speaker %d", n.counter)
		n.names[s.ID] = name
		n.order = append(n.order, s.ID)
		return name, true
	case models.SpeakerUnknown:
		return models.UnknownLabel, true
	default:
		return "", false
	}
}

// Len returns the number of distinct identifiers labeled so far.
func (n *Namer) Len() int {
	return n.counter
}

// Legend returns the identifier-to-label mapping in allocation order.
func (n *Namer) Legend() []models.LegendEntry {
	out := make([]models.LegendEntry, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, models.LegendEntry{Speaker: id, Label: n.names[id]})
	}
	return out
}
