package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// publishTimeout bounds each background write so a broker outage cannot pile
// up goroutines indefinitely.
const publishTimeout = 10 * time.Second

// KafkaPublisher writes search events to a Kafka topic. Publishing is
// fire-and-forget: writes happen on a background goroutine and failures are
// logged, never surfaced to the search path.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// Ensure KafkaPublisher implements Publisher
var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		logger: logger.With().Str("component", "history-publisher").Logger(),
	}
}

// Publish enqueues the event without blocking the caller.
func (p *KafkaPublisher) Publish(event SearchExecuted) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			p.logger.Error().Err(err).Msg("marshal search event")
			return
		}

		msg := kafka.Message{
			Key:   []byte(fmt.Sprintf("search.executed.%s", event.UserID)),
			Value: payload,
		}
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.logger.Error().Err(err).
				Str("user_id", event.UserID.String()).
				Msg("publish search event")
		}
	}()
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
