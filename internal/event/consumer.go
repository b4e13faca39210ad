package event

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"gorm.io/datatypes"

	"openlens/internal/model"
	"openlens/internal/repository"
)

// HistoryConsumer reads search events and persists them as history rows.
// It runs in-process alongside the HTTP server; ordering relative to
// subsequent searches is not guaranteed and last-write-wins is acceptable
// for a history list.
type HistoryConsumer struct {
	reader      *kafka.Reader
	historyRepo repository.SearchHistoryRepository
	logger      zerolog.Logger
}

// NewHistoryConsumer creates a consumer in the openlens-history group.
func NewHistoryConsumer(brokers []string, topic string, historyRepo repository.SearchHistoryRepository, logger zerolog.Logger) *HistoryConsumer {
	return &HistoryConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  "openlens-history",
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		historyRepo: historyRepo,
		logger:      logger.With().Str("component", "history-consumer").Logger(),
	}
}

// Run consumes events until ctx is cancelled.
func (c *HistoryConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			c.logger.Error().Err(err).Msg("read search event")
			continue
		}
		c.record(ctx, msg)
	}
}

func (c *HistoryConsumer) record(ctx context.Context, msg kafka.Message) {
	var event SearchExecuted
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error().Err(err).Msg("unmarshal search event")
		return
	}

	entry := &model.SearchHistory{
		UserID:      event.UserID,
		Query:       event.Query,
		MediaType:   event.MediaType,
		Filters:     toJSONMap(event.Filters),
		ResultCount: event.ResultCount,
	}
	if err := c.historyRepo.Create(ctx, entry); err != nil {
		c.logger.Error().Err(err).
			Str("user_id", event.UserID.String()).
			Msg("persist history row")
	}
}

// Close closes the underlying reader.
func (c *HistoryConsumer) Close() error {
	return c.reader.Close()
}

func toJSONMap(filters map[string]string) datatypes.JSONMap {
	if len(filters) == 0 {
		return nil
	}
	m := make(datatypes.JSONMap, len(filters))
	for k, v := range filters {
		m[k] = v
	}
	return m
}
