package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"speech-transcript-formatter/internal/app"
	"speech-transcript-formatter/internal/config"
	"speech-transcript-formatter/internal/observability/logging"
	"speech-transcript-formatter/internal/service/stt/file"
	"speech-transcript-formatter/internal/service/transcript"
)

type formatFlags struct {
	title        string
	policy       string
	pause        float64
	maxSentences int
	wordPause    float64
	minWords     int
	workers      int
}

func (f *formatFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Document heading (default from config)")
	cmd.Flags().StringVar(&f.policy, "policy", "", "Paragraph policy: sentences, words, auto")
	cmd.Flags().Float64Var(&f.pause, "pause", 0, "Pause in seconds that starts a new paragraph (sentences policy)")
	cmd.Flags().IntVar(&f.maxSentences, "max-sentences", 0, "Sentences per paragraph before a break (sentences policy)")
	cmd.Flags().Float64Var(&f.wordPause, "word-pause", 0, "Pause in seconds that starts a new paragraph (words policy)")
	cmd.Flags().IntVar(&f.minWords, "min-words", 0, "Words a paragraph needs before a pause can break it (words policy)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Parallel speaker resolution workers")
}

// apply overrides cfg with the flags the user set explicitly.
func (f *formatFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		cfg.Format.Title = f.title
	}
	if flags.Changed("policy") {
		cfg.Format.Policy = f.policy
	}
	if flags.Changed("pause") {
		cfg.Format.PauseSeconds = f.pause
	}
	if flags.Changed("max-sentences") {
		cfg.Format.MaxSentences = f.maxSentences
	}
	if flags.Changed("word-pause") {
		cfg.Format.WordPauseSeconds = f.wordPause
	}
	if flags.Changed("min-words") {
		cfg.Format.MinWords = f.minWords
	}
	if flags.Changed("workers") {
		cfg.Diarization.Workers = f.workers
	}
}

func newRenderCommand(deps *CommandDeps, load func() (*config.Config, error)) *cobra.Command {
	var (
		transcriptPath  string
		diarizationPath string
		output          string
		ff              formatFlags
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a transcript JSON file to Markdown",
		Long: `Render a transcript JSON file to Markdown.

The transcript holds segments with start, end and text, and optionally
word-level timestamps. With --diarization (RTTM or JSON turns) the
document is split into speaker-attributed passages; otherwise it is
split into paragraphs at pauses.`,
		Example: `  transcribe render --transcript meeting.json
  transcribe render --transcript meeting.json --diarization meeting.rttm -o notes.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ff.apply(cmd, cfg)
			initLogging(deps, cfg)

			tr, err := file.LoadTranscript(transcriptPath)
			if err != nil {
				return err
			}
			req := transcript.Request{Transcript: tr, Source: "cli"}
			if diarizationPath != "" {
				turns, err := file.LoadTimeline(diarizationPath)
				if err != nil {
					return err
				}
				req.Diarization = turns
				req.Diarize = true
			}

			if output == "" {
				output = defaultOutputPath(transcriptPath)
			}
			return renderTo(cmd.Context(), deps, cfg, req, output)
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Transcript JSON file")
	cmd.Flags().StringVar(&diarizationPath, "diarization", "", "Speaker timeline (.rttm or JSON)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .md path (default: <transcript>.md)")
	ff.register(cmd)
	_ = cmd.MarkFlagRequired("transcript")

	return cmd
}

// renderTo runs the engine on req and writes the document to output.
func renderTo(ctx context.Context, deps *CommandDeps, cfg *config.Config, req transcript.Request, output string) error {
	opts, err := app.EngineOptions(cfg)
	if err != nil {
		return err
	}
	res, err := transcript.NewEngine(opts, nil).Render(ctx, req)
	if err != nil {
		return err
	}
	if res.Path == transcript.PathFallback {
		fmt.Fprintln(deps.Err, "Warning: no speaker could be attributed; wrote plain paragraphs")
	}
	return writeDocument(deps, output, res.Markdown)
}

// initLogging sends human-readable logs to the error stream.
func initLogging(deps *CommandDeps, cfg *config.Config) {
	level := cfg.Observability.LogLevel
	if level == "" || level == "info" {
		level = "warn"
	}
	logging.Init(logging.Config{
		Level:      level,
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     deps.Err,
	})
}
