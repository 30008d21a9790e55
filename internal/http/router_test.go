package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"speech-transcript-formatter/internal/observability/metrics"
	"speech-transcript-formatter/internal/service/transcript"
)

func newTestRouter() http.Handler {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewRouter(transcript.NewEngine(transcript.DefaultOptions(), m), m)
}

const diarizedBody = `{
  "transcript": {"segments": [{"start": 0, "end": 5, "text": "Hi there",
    "words": [{"start": 0, "end": 1, "text": "Hi"}, {"start": 4, "end": 5, "text": "there"}]}]},
  "diarization": [{"start": 0, "end": 3, "speaker": "A"}, {"start": 3, "end": 6, "speaker": "B"}],
  "speakerId": true
}`

func TestRender_Markdown(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/render", strings.NewReader(diarizedBody))

	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("expected markdown content type, got %s", ct)
	}
	want := "# Transcript\n\n**Speaker 1:** Hi\n\n**Speaker 2:** there\n"
	if rec.Body.String() != want {
		t.Errorf("expected %q, got %q", want, rec.Body.String())
	}
	if rec.Header().Get("X-Run-Id") == "" {
		t.Error("expected a run id header")
	}
}

func TestRender_JSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/render", strings.NewReader(diarizedBody))
	req.Header.Set("Accept", "application/json")

	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Path != "diarized" || len(resp.Speakers) != 2 || len(resp.Document.Paragraphs) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Document.Paragraphs[0].Label != "Speaker 1" {
		t.Errorf("expected first label 'Speaker 1', got %q", resp.Document.Paragraphs[0].Label)
	}
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed body", `{"transcript":`, http.StatusBadRequest},
		{"end before start", `{"transcript": {"segments": [{"start": 2, "end": 1, "text": "x"}]}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/render", strings.NewReader(tt.body))

			newTestRouter().ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Errorf("expected a JSON error body, got %q", rec.Body.String())
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()
	for _, path := range []string{"/v1/liveness", "/v1/readiness"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
