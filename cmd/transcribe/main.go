// Command transcribe renders timestamped transcripts to Markdown, either from
// files on disk or straight from a speech-to-text provider.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := DefaultCommandDeps()
	if err := NewRootCommand(deps).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(deps.Err, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
