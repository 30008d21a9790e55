// Package app wires configuration, the render engine and the event publisher
// into one process-wide application shared by every transport.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"speech-transcript-formatter/internal/config"
	"speech-transcript-formatter/internal/events"
	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/observability/logging"
	"speech-transcript-formatter/internal/observability/metrics"
	"speech-transcript-formatter/internal/service/format"
	"speech-transcript-formatter/internal/service/speaker"
	"speech-transcript-formatter/internal/service/transcript"
)

// Publisher receives one event per rendered document.
type Publisher interface {
	PublishRendered(ctx context.Context, ev models.DocumentRendered) error
	Close() error
}

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config
	Engine      *transcript.Engine
	Publisher   Publisher
}

// EngineOptions converts the format and diarization sections into engine options.
func EngineOptions(cfg *config.Config) (transcript.Options, error) {
	kind, err := format.ParsePolicyKind(cfg.Format.Policy)
	if err != nil {
		return transcript.Options{}, err
	}
	return transcript.Options{
		Title: cfg.Format.Title,
		Policy: format.Policy{
			Kind:             kind,
			PauseSeconds:     cfg.Format.PauseSeconds,
			MaxSentences:     cfg.Format.MaxSentences,
			WordPauseSeconds: cfg.Format.WordPauseSeconds,
			MinWords:         cfg.Format.MinWords,
		},
		Resolver: speaker.Options{MaxMidpointDistance: cfg.Diarization.MaxMidpointDistance},
		Workers:  cfg.Diarization.Workers,
	}, nil
}

// New constructs an Application. A nil publisher is replaced by a log-only
// Kafka publisher; a nil m uses metrics.DefaultMetrics.
func New(cfg *config.Config, pub Publisher, m *metrics.Metrics) (*Application, error) {
	opts, err := EngineOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("format config: %w", err)
	}
	if pub == nil {
		pub = events.New(&events.Config{Enabled: false, Topic: cfg.Kafka.Topic, Principal: cfg.Kafka.Principal, Metrics: m})
	}

	a := &Application{
		Cfg:       cfg,
		Engine:    transcript.NewEngine(opts, m),
		Publisher: pub,
		Logger: logging.WithComponent("application").With().
			Str("service", "speech-transcript-formatter").
			Logger(),
	}

	a.Logger.Info().
		Str("policy", opts.Policy.Kind.String()).
		Int("workers", opts.Workers).
		Msg("Speech transcript formatter application created")
	return a, nil
}

// Render runs the engine and publishes the resulting document event.
// Publish failures are logged and do not fail the render.
func (a *Application) Render(ctx context.Context, req transcript.Request) (*transcript.Result, error) {
	res, err := a.Engine.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := a.Publisher.PublishRendered(ctx, res.Event(req.Source)); err != nil {
		a.Logger.Warn().Err(err).Str("runId", res.RunID).Msg("Failed to publish rendered document")
	}
	return res, nil
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Str("environment", os.Getenv("ENV")).
		Msg("Speech transcript formatter starting")
	return nil
}

// Shutdown closes the publisher. It is best effort.
func (a *Application) Shutdown() {
	a.Logger.Info().Msg("Speech transcript formatter shutting down")
	if err := a.Publisher.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("Error closing publisher")
	}
}
