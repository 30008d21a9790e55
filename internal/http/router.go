package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/observability"
	"speech-transcript-formatter/internal/observability/metrics"
	"speech-transcript-formatter/internal/schema"
	"speech-transcript-formatter/internal/service/transcript"
)

// maxBodyBytes bounds a render request body.
const maxBodyBytes = 16 << 20

// Renderer renders one request. *app.Application implements it.
type Renderer interface {
	Render(ctx context.Context, req transcript.Request) (*transcript.Result, error)
}

type renderRequest struct {
	Transcript  models.Transcript     `json:"transcript"`
	Diarization []models.TimeInterval `json:"diarization,omitempty"`
	SpeakerID   bool                  `json:"speakerId"`
}

type renderResponse struct {
	RunID    string               `json:"runId"`
	Path     string               `json:"path"`
	Mode     string               `json:"mode,omitempty"`
	Speakers []models.LegendEntry `json:"speakers,omitempty"`
	Document models.Document      `json:"document"`
	Markdown string               `json:"markdown"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter constructs the HTTP router for the service. A nil m uses metrics.DefaultMetrics.
func NewRouter(renderer Renderer, m *metrics.Metrics) http.Handler {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.HTTPMiddleware(m))

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", renderHandler(renderer))
	})

	return r
}

// renderHandler formats the posted transcript. The response is markdown
// unless the client accepts JSON.
func renderHandler(renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renderRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
			return
		}

		res, err := renderer.Render(r.Context(), transcript.Request{
			Transcript:  req.Transcript,
			Diarization: req.Diarization,
			Diarize:     req.SpeakerID,
			Source:      "http",
		})
		if err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, schema.ErrContractViolation) {
				code = http.StatusUnprocessableEntity
			}
			log.Warn().Err(err).Str("requestId", middleware.GetReqID(r.Context())).Msg("Render request failed")
			writeJSON(w, code, errorResponse{Error: err.Error()})
			return
		}

		w.Header().Set("X-Run-Id", res.RunID)
		if !wantsJSON(r) {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(res.Markdown))
			return
		}
		writeJSON(w, http.StatusOK, renderResponse{
			RunID:    res.RunID,
			Path:     string(res.Path),
			Mode:     res.Mode,
			Speakers: res.Legend,
			Document: res.Document,
			Markdown: res.Markdown,
		})
	}
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
