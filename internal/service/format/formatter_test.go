package format

import (
	"errors"
	"strings"
	"testing"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/service/label"
)

func unit(text string, start, end float64) models.TextUnit {
	return models.TextUnit{Start: start, End: end, Text: text}
}

func TestParagraphs_PauseBreak(t *testing.T) {
	units := []models.TextUnit{
		unit("Hello", 0.0, 1.0),
		unit("world", 1.1, 2.0),
		unit("Bye", 5.0, 6.0),
	}
	p := DefaultPolicy()
	p.PauseSeconds = 2.0

	got := Paragraphs(units, p)

	want := []string{"Hello world", "Bye"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParagraphs_PauseMustExceedThreshold(t *testing.T) {
	units := []models.TextUnit{
		unit("a", 0, 1),
		unit("b", 3, 4),
	}

	got := Paragraphs(units, DefaultPolicy())

	if len(got) != 1 {
		t.Errorf("expected a gap equal to the threshold not to break, got %q", got)
	}
}

func TestParagraphs_SentenceCap(t *testing.T) {
	var units []models.TextUnit
	for i := 0; i < 7; i++ {
		units = append(units, unit("Sentence here.", float64(i), float64(i)+0.9))
	}
	p := DefaultPolicy()
	p.MaxSentences = 3

	got := Paragraphs(units, p)

	if len(got) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %q", len(got), got)
	}
	if strings.Count(got[0], ".") != 3 || strings.Count(got[1], ".") != 3 || strings.Count(got[2], ".") != 1 {
		t.Errorf("unexpected sentence distribution: %q", got)
	}
}

func TestParagraphs_SentenceCapCountsEveryMark(t *testing.T) {
	units := []models.TextUnit{
		unit("Wait... what?!", 0, 1),
		unit("next", 1, 2),
	}
	p := DefaultPolicy()
	p.MaxSentences = 5

	got := Paragraphs(units, p)

	want := []string{"Wait... what?!", "next"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCountTerminalMarks(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"no marks here", 0},
		{"Done.", 1},
		{"Well... okay?!", 5},
		{"Really? Yes! Fine.", 3},
	}
	for _, tt := range tests {
		if got := countTerminalMarks(tt.text); got != tt.want {
			t.Errorf("countTerminalMarks(%q): expected %d, got %d", tt.text, tt.want, got)
		}
	}
}

func TestParagraphs_SentenceCapDisabled(t *testing.T) {
	var units []models.TextUnit
	for i := 0; i < 20; i++ {
		units = append(units, unit("Go.", float64(i), float64(i)+0.5))
	}
	p := DefaultPolicy()
	p.MaxSentences = 0

	if got := Paragraphs(units, p); len(got) != 1 {
		t.Errorf("expected a single paragraph, got %d", len(got))
	}
}

func TestParagraphs_WordPolicy(t *testing.T) {
	units := []models.TextUnit{
		unit("one two three", 0, 1),
		unit("four five", 3, 4), // pause, but only 3 words so far
		unit("six", 6, 7),       // pause and 5 words so far
		unit("seven", 7.5, 8),
	}
	p := DefaultPolicy()
	p.Kind = PolicyWords
	p.WordPauseSeconds = 1.0
	p.MinWords = 5

	got := Paragraphs(units, p)

	want := []string{"one two three four five", "six seven"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParagraphs_WordPolicyIgnoresPunctuationCap(t *testing.T) {
	var units []models.TextUnit
	for i := 0; i < 10; i++ {
		units = append(units, unit("Yes.", float64(i), float64(i)+0.5))
	}
	p := DefaultPolicy()
	p.Kind = PolicyWords

	if got := Paragraphs(units, p); len(got) != 1 {
		t.Errorf("expected the word policy to ignore sentence counts, got %d paragraphs", len(got))
	}
}

func TestParagraphs_SkipsEmptyAndPreservesText(t *testing.T) {
	units := []models.TextUnit{
		unit("  alpha ", 0, 1),
		unit("", 1, 2),
		unit("   ", 2, 3),
		unit("beta.", 10, 11),
		unit("gamma", 11, 12),
	}

	got := Paragraphs(units, DefaultPolicy())

	joined := strings.ReplaceAll(strings.Join(got, ""), " ", "")
	if joined != "alphabeta.gamma" {
		t.Errorf("expected text to be preserved in order, got %q", joined)
	}
	for _, p := range got {
		if p == "" {
			t.Error("expected no empty paragraph")
		}
	}
}

func TestPolicy_Select(t *testing.T) {
	auto := DefaultPolicy()
	auto.Kind = PolicyAuto

	punctuated := []models.TextUnit{unit("Hello there.", 0, 1)}
	bare := []models.TextUnit{unit("hello there", 0, 1)}

	tests := []struct {
		name   string
		policy Policy
		g      models.Granularity
		units  []models.TextUnit
		want   PolicyKind
	}{
		{"explicit sentences kept", DefaultPolicy(), models.GranularitySegment, bare, PolicySentences},
		{"auto word-level", auto, models.GranularityWord, bare, PolicySentences},
		{"auto punctuated segments", auto, models.GranularitySegment, punctuated, PolicySentences},
		{"auto bare segments", auto, models.GranularitySegment, bare, PolicyWords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Select(tt.g, tt.units).Kind; got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParsePolicyKind(t *testing.T) {
	tests := []struct {
		input   string
		want    PolicyKind
		wantErr bool
	}{
		{"sentences", PolicySentences, false},
		{"WORDS", PolicyWords, false},
		{" auto ", PolicyAuto, false},
		{"paragraphs", PolicySentences, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePolicyKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if err != nil && !errors.Is(err, ErrUnknownPolicy) {
				t.Errorf("expected ErrUnknownPolicy, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPassages_LabelsInFirstSeenOrder(t *testing.T) {
	passages := []models.Passage{
		{Speaker: models.KnownSpeaker("SPEAKER_01"), Text: "Hi"},
		{Speaker: models.UnknownSpeaker, Text: "mumble"},
		{Speaker: models.KnownSpeaker("SPEAKER_00"), Text: "there"},
		{Speaker: models.KnownSpeaker("SPEAKER_01"), Text: "again"},
		{Speaker: models.KnownSpeaker("SPEAKER_02"), Text: "  "},
	}

	got := Passages(passages, label.New())

	want := []models.Paragraph{
		{Label: "Speaker 1", Text: "Hi"},
		{Label: "Unknown", Text: "mumble"},
		{Label: "Speaker 2", Text: "there"},
		{Label: "Speaker 1", Text: "again"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paragraph %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		doc  models.Document
		want string
	}{
		{"empty", models.Document{}, "# Transcript\n"},
		{"plain", models.Document{Paragraphs: Plain([]string{"Hello world", "Bye"})},
			"# Transcript\n\nHello world\n\nBye\n"},
		{"labeled", models.Document{Paragraphs: []models.Paragraph{
			{Label: "Speaker 1", Text: "Hi"},
			{Label: "Speaker 2", Text: "there"},
		}}, "# Transcript\n\n**Speaker 1:** Hi\n\n**Speaker 2:** there\n"},
		{"custom title skips empty", models.Document{Title: "Standup", Paragraphs: []models.Paragraph{
			{Text: ""},
			{Text: "ok"},
		}}, "# Standup\n\nok\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.doc); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
