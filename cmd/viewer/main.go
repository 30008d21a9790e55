// Transcript Viewer - live display of rendered documents.
// Consumes the rendered-document topic from Kafka and pushes each event to
// browsers over WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"speech-transcript-formatter/internal/events"
	"speech-transcript-formatter/internal/observability/logging"
	"speech-transcript-formatter/internal/viewer"
)

func main() {
	port := flag.String("port", "8081", "HTTP server port")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", events.DefaultTopic, "Rendered document topic")
	lookback := flag.Duration("lookback", time.Hour, "Replay messages newer than this on start")
	history := flag.Int("history", viewer.DefaultHistory, "Documents replayed to each new browser")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console", TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := viewer.NewHub(*history)
	go hub.Run(ctx)

	reader := viewer.NewReader(ctx, strings.Split(*brokers, ","), *topic, *lookback)
	defer reader.Close()
	go viewer.Consume(ctx, reader, hub)

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           viewer.Handler(hub),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("url", "http://localhost:"+*port).
		Str("brokers", *brokers).
		Str("topic", *topic).
		Msg("Transcript viewer starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server error")
	}
}
