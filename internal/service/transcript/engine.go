// Package transcript runs the formatting pipeline: speaker resolution, passage
// building, labeling and paragraph formatting, one complete pass at a time.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/observability/logging"
	"speech-transcript-formatter/internal/observability/metrics"
	"speech-transcript-formatter/internal/schema"
	"speech-transcript-formatter/internal/service/format"
	"speech-transcript-formatter/internal/service/label"
	"speech-transcript-formatter/internal/service/passage"
	"speech-transcript-formatter/internal/service/speaker"
	"speech-transcript-formatter/internal/service/timeline"
)

// EventTypeRendered is the event type of models.DocumentRendered.
const EventTypeRendered = "transcript.document.rendered"

// Path reports how a document was produced.
type Path string

const (
	// PathPlain - diarization was not requested.
	PathPlain Path = "plain"
	// PathDiarized - passages rendered with speaker labels.
	PathDiarized Path = "diarized"
	// PathFallback - diarization was requested but no unit matched a real speaker.
	PathFallback Path = "fallback"
)

// Options configures an Engine.
type Options struct {
	Title    string
	Policy   format.Policy
	Resolver speaker.Options
	// Workers > 1 parallelizes speaker resolution.
	Workers int
}

// DefaultOptions returns the default title and paragraph policy with serial resolution.
func DefaultOptions() Options {
	return Options{
		Title:   format.DefaultTitle,
		Policy:  format.DefaultPolicy(),
		Workers: 1,
	}
}

// Request is one render invocation. Diarization is only consulted when Diarize is set.
type Request struct {
	Transcript  models.Transcript
	Diarization []models.TimeInterval
	Diarize     bool
	// Source tags logs and events, e.g. "cli", "grpc", "http".
	Source string
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    string
	Path     Path
	Mode     string // resolver mode, empty on the plain path
	Policy   string // paragraph policy, empty on the diarized path
	Passages []models.Passage
	Legend   []models.LegendEntry
	Document models.Document
	Markdown string
}

// Event builds the event published for this result.
func (r *Result) Event(source string) models.DocumentRendered {
	return models.DocumentRendered{
		EventType:  EventTypeRendered,
		RunID:      r.RunID,
		Source:     source,
		Timestamp:  time.Now().UnixMilli(),
		Path:       string(r.Path),
		Mode:       r.Mode,
		Speakers:   r.Legend,
		Passages:   len(r.Passages),
		Paragraphs: len(r.Document.Paragraphs),
		Markdown:   r.Markdown,
	}
}

// Engine is safe for concurrent use; every Render call owns its run state.
type Engine struct {
	opts      Options
	validator *schema.Validator
	metrics   *metrics.Metrics
}

// NewEngine creates an engine. A nil m uses metrics.DefaultMetrics; a zero
// Title or Policy uses the defaults.
func NewEngine(opts Options, m *metrics.Metrics) *Engine {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	if opts.Title == "" {
		opts.Title = format.DefaultTitle
	}
	if opts.Policy == (format.Policy{}) {
		opts.Policy = format.DefaultPolicy()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{opts: opts, validator: schema.New(), metrics: m}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Render produces the document for req. The only errors are contract
// violations in the inputs (wrapping schema.ErrContractViolation) and context
// cancellation during speaker resolution.
func (e *Engine) Render(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	lc := NewLifecycle(uuid.NewString())
	logger := logging.WithRun(lc.RunID(), req.Source)

	res, err := e.run(ctx, lc, req, logger)
	if err != nil {
		lc.Fail()
		e.metrics.RecordRunError(reason(err))
		logger.Warn().Err(err).Str("state", lc.State().String()).Msg("Render run failed")
		return nil, err
	}

	e.metrics.RecordRun(string(res.Path), len(res.Document.Paragraphs), time.Since(start).Seconds())
	logger.Info().
		Str("path", string(res.Path)).
		Int("paragraphs", len(res.Document.Paragraphs)).
		Int("speakers", len(res.Legend)).
		Dur("duration", time.Since(start)).
		Msg("Transcript rendered")
	return res, nil
}

func (e *Engine) run(ctx context.Context, lc *Lifecycle, req Request, logger zerolog.Logger) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.validator.ValidateTranscript(req.Transcript); err != nil {
		return nil, err
	}
	res := &Result{RunID: lc.RunID(), Path: PathPlain}

	if req.Diarize {
		if err := e.validator.ValidateTimeline(req.Diarization); err != nil {
			return nil, err
		}
		ok, err := e.diarized(ctx, lc, req, res, logger)
		if err != nil {
			return nil, err
		}
		if ok {
			return res, nil
		}
		res.Path = PathFallback
		e.metrics.RecordFallback()
		logger.Info().Int("passages", len(res.Passages)).Msg("No speaker matched any unit, rendering without labels")
	}

	e.plain(req.Transcript, res)
	if err := lc.Advance(StateRendered); err != nil {
		return nil, err
	}
	return res, nil
}

// diarized runs the resolve, build and label passes. It returns false when
// no passage carries a real speaker, leaving the run in BUILT.
func (e *Engine) diarized(ctx context.Context, lc *Lifecycle, req Request, res *Result, logger zerolog.Logger) (bool, error) {
	g := req.Transcript.Granularity()
	mode := speaker.ModeFor(g)
	units := req.Transcript.SegmentUnits()
	if g == models.GranularityWord {
		units = req.Transcript.Words()
	}
	res.Mode = mode.String()

	resolver := speaker.NewResolver(mode, timeline.New(req.Diarization), e.opts.Resolver)
	attrs, err := resolver.ResolveAll(ctx, units, e.opts.Workers)
	if err != nil {
		return false, fmt.Errorf("resolve speakers: %w", err)
	}
	if err := lc.Advance(StateResolved); err != nil {
		return false, err
	}
	unknown := 0
	for _, a := range attrs {
		if a.Speaker == models.UnknownSpeaker {
			unknown++
		}
	}
	e.metrics.RecordResolved(mode.String(), len(attrs), unknown)
	logger.Debug().
		Str("mode", mode.String()).
		Int("units", len(attrs)).
		Int("unknown", unknown).
		Int("turns", len(req.Diarization)).
		Msg("Speakers resolved")

	res.Passages = passage.Collect(passage.FromSlice(attrs))
	if err := lc.Advance(StateBuilt); err != nil {
		return false, err
	}
	if !passage.HasSpeakerSignal(res.Passages) {
		return false, nil
	}

	namer := label.New()
	res.Document = models.Document{Title: e.opts.Title, Paragraphs: format.Passages(res.Passages, namer)}
	res.Legend = namer.Legend()
	res.Path = PathDiarized
	res.Markdown = format.Render(res.Document)
	e.metrics.RecordPassages(len(res.Passages), namer.Len())
	return true, lc.Advance(StateRendered)
}

// plain formats the transcript without speaker labels.
func (e *Engine) plain(tr models.Transcript, res *Result) {
	units := tr.SegmentUnits()
	if len(units) == 0 {
		units = tr.Words()
	}
	policy := e.opts.Policy.Select(tr.Granularity(), units)
	res.Policy = policy.Kind.String()
	res.Legend = nil
	res.Document = models.Document{Title: e.opts.Title, Paragraphs: format.Plain(format.Paragraphs(units, policy))}
	res.Markdown = format.Render(res.Document)
}

func reason(err error) string {
	switch {
	case errors.Is(err, schema.ErrContractViolation):
		return "contract_violation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
