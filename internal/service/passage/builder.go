// Package passage merges chronologically ordered attributions into same-speaker passages.
package passage

import (
	"iter"
	"slices"
	"strings"

	"speech-transcript-formatter/internal/models"
)

// run is the fold state threaded through one forward pass.
type run struct {
	speaker models.Speaker
	words   []string
}

func (r run) empty() bool {
	return len(r.words) == 0
}

func (r run) passage() models.Passage {
	return models.Passage{Speaker: r.speaker, Text: strings.Join(r.words, " ")}
}

// step folds one attribution into the current run. When the speaker changes
// it returns the completed passage and flushed=true.
func step(cur run, a models.Attribution) (next run, done models.Passage, flushed bool) {
	text := strings.TrimSpace(a.Unit.Text)
	if text == "" {
		return cur, models.Passage{}, false
	}
	if !cur.empty() && cur.speaker == a.Speaker {
		cur.words = append(cur.words, text)
		return cur, models.Passage{}, false
	}
	if !cur.empty() {
		done, flushed = cur.passage(), true
	}
	return run{speaker: a.Speaker, words: []string{text}}, done, flushed
}

// Build returns a lazy sequence of passages. Consecutive attributions with the
// same speaker are space-joined into one passage; units with empty text are
// skipped, so no two yielded passages are adjacent with the same speaker.
func Build(attrs iter.Seq[models.Attribution]) iter.Seq[models.Passage] {
	return func(yield func(models.Passage) bool) {
		var cur run
		for a := range attrs {
			var (
				done    models.Passage
				flushed bool
			)
			cur, done, flushed = step(cur, a)
			if flushed && !yield(done) {
				return
			}
		}
		if !cur.empty() {
			yield(cur.passage())
		}
	}
}

// FromSlice builds passages from a materialized attribution slice.
func FromSlice(attrs []models.Attribution) iter.Seq[models.Passage] {
	return Build(slices.Values(attrs))
}

// Collect drains a passage sequence.
func Collect(seq iter.Seq[models.Passage]) []models.Passage {
	return slices.Collect(seq)
}

// HasSpeakerSignal reports whether any passage carries a real diarization identifier.
func HasSpeakerSignal(passages []models.Passage) bool {
	return slices.ContainsFunc(passages, func(p models.Passage) bool {
		return p.Speaker.IsKnown()
	})
}
