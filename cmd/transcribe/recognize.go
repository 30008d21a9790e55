package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"speech-transcript-formatter/internal/config"
	"speech-transcript-formatter/internal/service/stt"
	"speech-transcript-formatter/internal/service/transcript"
)

// turboModel is the faster, slightly less accurate recognition model.
const turboModel = "latest_short"

func newRecognizeCommand(deps *CommandDeps, load func() (*config.Config, error)) *cobra.Command {
	var (
		providerName string
		model        string
		turbo        bool
		speakerID    bool
		output       string
		ff           formatFlags
	)

	cmd := &cobra.Command{
		Use:   "recognize <audio>",
		Short: "Transcribe an audio file and render it to Markdown",
		Long: `Transcribe an audio file with a speech-to-text provider and render the
result to Markdown.

Providers:
  google  Cloud Speech-to-Text (uses Application Default Credentials)
  file    Precomputed sidecars next to the audio (<name>.json, <name>.rttm)
  mock    Canned samples, no credentials needed

With --speakerid the provider also returns a speaker timeline and the
document is labeled by speaker.`,
		Example: `  transcribe recognize meeting.m4a
  transcribe recognize --speakerid -o notes.md meeting.m4a
  transcribe recognize --turbo recording.m4a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audioPath := args[0]
			if _, err := os.Stat(audioPath); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("%w: %s", stt.ErrAudioNotFound, audioPath)
				}
				return err
			}
			if !stt.HasSupportedExtension(audioPath) {
				fmt.Fprintf(deps.Err, "Warning: unexpected format %s; trying anyway\n", filepath.Ext(audioPath))
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			ff.apply(cmd, cfg)
			if cmd.Flags().Changed("provider") {
				cfg.STT.Provider = providerName
			}
			if cmd.Flags().Changed("model") {
				cfg.STT.Model = model
			}
			if turbo {
				cfg.STT.Model = turboModel
			}
			cfg.STT.EnableDiarization = speakerID
			initLogging(deps, cfg)

			ctx := cmd.Context()
			tr, err := deps.NewTranscriber(ctx, cfg.STT)
			if err != nil {
				return authHint(err)
			}
			defer tr.Close()

			fmt.Fprintf(deps.Out, "Provider: %s\n", cfg.STT.Provider)
			fmt.Fprintln(deps.Out, "Running transcription…")
			res, err := tr.Transcribe(ctx, stt.Audio{Path: audioPath}, speakerID)
			if err != nil {
				return authHint(err)
			}
			if speakerID && !res.Diarized {
				fmt.Fprintln(deps.Err, "Warning: provider returned no speaker timeline; writing plain paragraphs")
			}

			if output == "" {
				output = defaultOutputPath(audioPath)
			}
			req := transcript.Request{
				Transcript:  res.Transcript,
				Diarization: res.Diarization,
				Diarize:     res.Diarized,
				Source:      "cli",
			}
			return renderTo(ctx, deps, cfg, req, output)
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "Speech provider: google, file, mock (default from config)")
	cmd.Flags().StringVar(&model, "model", "", "Recognition model (default from config)")
	cmd.Flags().BoolVar(&turbo, "turbo", false, "Use the faster, slightly less accurate model")
	cmd.Flags().BoolVar(&speakerID, "speakerid", false, "Label paragraphs by speaker")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .md path (default: <input_name>.md in the same directory)")
	ff.register(cmd)

	return cmd
}

// authHint adds a remedy to authentication failures.
func authHint(err error) error {
	if !errors.Is(err, stt.ErrAuthentication) {
		return err
	}
	return fmt.Errorf("%w\n\nRun `gcloud auth application-default login` or set GOOGLE_APPLICATION_CREDENTIALS "+
		"to a service account key with access to Speech-to-Text", err)
}
