// Package timeline answers overlap and proximity queries over diarization turns.
package timeline

import "speech-transcript-formatter/internal/models"

// Index is a read-only view over a diarization timeline.
// Queries are linear scans in the input order of the turns, which keeps
// tie-breaking stable: on equal scores the earliest-listed turn wins.
type Index struct {
	turns []models.TimeInterval
}

// New creates an index over a copy of turns. Turns need not be sorted and may overlap.
func New(turns []models.TimeInterval) *Index {
	cp := make([]models.TimeInterval, len(turns))
	copy(cp, turns)
	return &Index{turns: cp}
}

// Len returns the number of turns.
func (x *Index) Len() int {
	return len(x.turns)
}

// Turns returns a copy of the indexed turns in input order.
func (x *Index) Turns() []models.TimeInterval {
	cp := make([]models.TimeInterval, len(x.turns))
	copy(cp, x.turns)
	return cp
}

// BestOverlap returns the turn with the largest overlap with [start, end].
// ok is false when no turn overlaps by more than zero.
func (x *Index) BestOverlap(start, end float64) (best models.TimeInterval, overlap float64, ok bool) {
	for _, t := range x.turns {
		if o := t.Overlap(start, end); o > overlap {
			best, overlap, ok = t, o, true
		}
	}
	return best, overlap, ok
}

// Containing returns the first turn containing t, bounds included.
func (x *Index) Containing(t float64) (models.TimeInterval, bool) {
	for _, turn := range x.turns {
		if turn.Contains(t) {
			return turn, true
		}
	}
	return models.TimeInterval{}, false
}

// Nearest returns the turn whose nearer endpoint is closest to t.
// ok is false only when the index is empty.
func (x *Index) Nearest(t float64) (best models.TimeInterval, dist float64, ok bool) {
	for _, turn := range x.turns {
		if d := turn.Distance(t); !ok || d < dist {
			best, dist, ok = turn, d, true
		}
	}
	return best, dist, ok
}
