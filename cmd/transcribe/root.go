package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"speech-transcript-formatter/internal/config"
	"speech-transcript-formatter/internal/service/stt"
	"speech-transcript-formatter/internal/service/stt/provider"
)

// CommandDeps holds the dependencies shared by the transcribe commands.
type CommandDeps struct {
	Out            io.Writer
	Err            io.Writer
	LoadConfig     func(path string) (*config.Config, error)
	NewTranscriber func(ctx context.Context, cfg config.STTConfig) (stt.Transcriber, error)
}

// DefaultCommandDeps returns the production dependencies.
func DefaultCommandDeps() *CommandDeps {
	return &CommandDeps{
		Out:            os.Stdout,
		Err:            os.Stderr,
		LoadConfig:     config.LoadFile,
		NewTranscriber: provider.New,
	}
}

// NewRootCommand creates the transcribe root command.
func NewRootCommand(deps *CommandDeps) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Turn timestamped transcripts into readable Markdown",
		Long: `Turn a timestamped transcript, optionally paired with a speaker
diarization timeline, into a Markdown document with paragraphs and
speaker labels.

Configuration is read from the YAML file given by --config (or
CONFIG_FILE); environment variables override the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "Path to YAML config file")

	load := func() (*config.Config, error) {
		return deps.LoadConfig(configPath)
	}
	cmd.AddCommand(newRenderCommand(deps, load))
	cmd.AddCommand(newRecognizeCommand(deps, load))
	return cmd
}

// defaultOutputPath places the document next to input with an .md extension.
func defaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".md"
}

func writeDocument(deps *CommandDeps, path, markdown string) error {
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(deps.Out, "✓ Saved: %s\n", path)
	return nil
}
