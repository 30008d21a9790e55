package format

import (
	"strings"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/service/label"
)

// DefaultTitle is the document heading used when none is configured.
const DefaultTitle = "Transcript"

// paragraph is the fold state of the non-diarized pass.
type paragraph struct {
	texts   []string
	marks   int
	words   int
	lastEnd float64
}

func (p paragraph) empty() bool {
	return len(p.texts) == 0
}

func (p paragraph) text() string {
	return strings.Join(p.texts, " ")
}

func (p paragraph) add(u models.TextUnit, text string) paragraph {
	p.texts = append(p.texts, text)
	p.marks += countTerminalMarks(text)
	p.words += countWords(text)
	p.lastEnd = u.End
	return p
}

// breakBefore reports whether u must start a new paragraph.
func (p Policy) breakBefore(cur paragraph, u models.TextUnit) bool {
	if cur.empty() {
		return false
	}
	gap := u.Start - cur.lastEnd
	switch p.Kind {
	case PolicyWords:
		return gap > p.WordPauseSeconds && cur.words >= p.MinWords
	default:
		return gap > p.PauseSeconds
	}
}

// breakAfter reports whether the paragraph is full after the last unit.
func (p Policy) breakAfter(cur paragraph) bool {
	return p.Kind == PolicySentences && p.MaxSentences > 0 && cur.marks >= p.MaxSentences
}

// Paragraphs groups ordered units into paragraph texts under policy p.
// PolicyAuto must be resolved with Select first; it behaves as PolicySentences here.
// Units with empty text are skipped.
func Paragraphs(units []models.TextUnit, p Policy) []string {
	var (
		out []string
		cur paragraph
	)
	for _, u := range units {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		if p.breakBefore(cur, u) {
			out = append(out, cur.text())
			cur = paragraph{}
		}
		cur = cur.add(u, text)
		if p.breakAfter(cur) {
			out = append(out, cur.text())
			cur = paragraph{}
		}
	}
	if !cur.empty() {
		out = append(out, cur.text())
	}
	return out
}

// Plain wraps paragraph texts as unlabeled document paragraphs.
func Plain(texts []string) []models.Paragraph {
	out := make([]models.Paragraph, 0, len(texts))
	for _, t := range texts {
		out = append(out, models.Paragraph{Text: t})
	}
	return out
}

// Passages renders each passage as its own paragraph, labeled through n in
// passage order. Passages with empty text are skipped and allocate no label.
func Passages(passages []models.Passage, n *label.Namer) []models.Paragraph {
	out := make([]models.Paragraph, 0, len(passages))
	for _, p := range passages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		name, _ := n.Label(p.Speaker)
		out = append(out, models.Paragraph{Label: name, Text: text})
	}
	return out
}

// Render serializes a document: a "# <title>" line, then every paragraph
// preceded by one blank line. Labeled paragraphs render as "**<label>:** <text>".
func Render(doc models.Document) string {
	title := doc.Title
	if title == "" {
		title = DefaultTitle
	}

	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(title)
	b.WriteString("\n")
	for _, p := range doc.Paragraphs {
		if p.Text == "" {
			continue
		}
		b.WriteString("\n")
		if p.Label != "" {
			b.WriteString("**")
			b.WriteString(p.Label)
			b.WriteString(":** ")
		}
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	return b.String()
}
