package viewer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/observability/logging"
	"speech-transcript-formatter/internal/service/transcript"
)

// MessageReader is the subset of *kafka.Reader used by Consume.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// NewReader returns a partition-0 reader without a consumer group, starting
// lookback before now.
func NewReader(ctx context.Context, brokers []string, topic string, lookback time.Duration) *kafka.Reader {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	if lookback > 0 {
		if err := reader.SetOffsetAt(ctx, time.Now().Add(-lookback)); err != nil {
			logger := logging.WithComponent("viewer-consumer")
			logger.Warn().Err(err).Msg("Failed to seek, reading from the first offset")
		}
	}
	return reader
}

// Consume forwards rendered-document events from r to hub until ctx is done.
// Undecodable messages and other event types are skipped.
func Consume(ctx context.Context, r MessageReader, hub *Hub) {
	logger := logging.WithComponent("viewer-consumer")
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("Kafka read error")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		var ev models.DocumentRendered
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("JSON unmarshal error")
			continue
		}
		if ev.EventType != transcript.EventTypeRendered {
			continue
		}

		logger.Debug().
			Str("runId", ev.RunID).
			Str("path", ev.Path).
			Int("paragraphs", ev.Paragraphs).
			Msg("Received rendered document")
		if err := hub.Publish(ctx, ev); err != nil {
			return
		}
	}
}
