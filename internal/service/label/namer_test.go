package label

import (
	"fmt"
	"testing"

	"speech-transcript-formatter/internal/models"
)

func TestNamer_Label(t *testing.T) {
	n := New()

	got, ok := n.Label(models.KnownSpeaker("SPEAKER_07"))
	if !ok || got != "Speaker 1" {
		t.Errorf("expected 'Speaker 1', got %s (ok=%v)", got, ok)
	}

	got, _ = n.Label(models.KnownSpeaker("SPEAKER_00"))
	if got != "Speaker 2" {
		t.Errorf("expected 'Speaker 2', got %s", got)
	}

	got, _ = n.Label(models.KnownSpeaker("SPEAKER_07"))
	if got != "Speaker 1" {
		t.Errorf("expected repeated identifier to keep 'Speaker 1', got %s", got)
	}
}

func TestNamer_UnknownAndNone(t *testing.T) {
	n := New()

	got, ok := n.Label(models.UnknownSpeaker)
	if !ok || got != "Unknown" {
		t.Errorf("expected 'Unknown', got %s (ok=%v)", got, ok)
	}

	got, ok = n.Label(models.NoSpeaker)
	if ok || got != "" {
		t.Errorf("expected no label for NoSpeaker, got %q (ok=%v)", got, ok)
	}

	if n.Len() != 0 {
		t.Errorf("expected sentinels not to allocate labels, got %d", n.Len())
	}

	got, _ = n.Label(models.KnownSpeaker("A"))
	if got != "Speaker 1" {
		t.Errorf("expected first real identifier to get 'Speaker 1', got %s", got)
	}
}

func TestNamer_CounterMonotonic(t *testing.T) {
	n := New()

	for i := 1; i <= 50; i++ {
		// Interleave repeats and sentinels; only new identifiers advance the counter.
		n.Label(models.UnknownSpeaker)
		got, _ := n.Label(models.KnownSpeaker(fmt.Sprintf("raw-%d", 100-i)))
		n.Label(models.KnownSpeaker("raw-99"))
		want := fmt.Sprintf("Speaker %d", i)
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestNamer_Legend(t *testing.T) {
	n := New()
	n.Label(models.KnownSpeaker("zeta"))
	n.Label(models.UnknownSpeaker)
	n.Label(models.KnownSpeaker("alpha"))
	n.Label(models.KnownSpeaker("zeta"))

	legend := n.Legend()
	if len(legend) != 2 {
		t.Fatalf("expected 2 legend entries, got %d", len(legend))
	}
	if legend[0].Speaker != "zeta" || legend[0].Label != "Speaker 1" {
		t.Errorf("unexpected first entry: %+v", legend[0])
	}
	if legend[1].Speaker != "alpha" || legend[1].Label != "Speaker 2" {
		t.Errorf("unexpected second entry: %+v", legend[1])
	}
}
