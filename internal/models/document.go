package models

// Paragraph is one rendered block of the document.
type Paragraph struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
}

// Document is the formatted transcript before it is serialized to text.
type Document struct {
	Title      string      `json:"title"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// LegendEntry maps a raw diarization identifier to its friendly label.
type LegendEntry struct {
	Speaker string `json:"speaker"`
	Label   string `json:"label"`
}

// DocumentRendered is published once per successful render.
type DocumentRendered struct {
	EventType  string        `json:"eventType"`
	RunID      string        `json:"runId"`
	Source     string        `json:"source,omitempty"`
	Timestamp  int64         `json:"timestamp"`
	Path       string        `json:"path"`
	Mode       string        `json:"mode,omitempty"`
	Speakers   []LegendEntry `json:"speakers,omitempty"`
	Passages   int           `json:"passages"`
	Paragraphs int           `json:"paragraphs"`
	Markdown   string        `json:"markdown"`
}
