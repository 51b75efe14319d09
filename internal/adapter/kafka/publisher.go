package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces freshly synced snapshots to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the snapshot topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes one snapshot, keyed by the coordinate it was fetched for so
// all observations of a location land on the same partition.
func (p *Publisher) Publish(ctx context.Context, at domain.Coordinates, snap domain.WeatherSnapshot) error {
	msg, err := serializeToMessage(at, snap)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	p.logger.Debug("snapshot published",
		"topic", p.writer.Topic,
		"location", snap.Name,
		"observed_at", snap.ObservedAt(),
	)
	return nil
}

// Close flushes pending messages and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// publishedSnapshot is the wire format of a snapshot message.
type publishedSnapshot struct {
	Coordinates domain.Coordinates     `json:"coordinates"`
	Snapshot    domain.WeatherSnapshot `json:"snapshot"`
	ObservedAt  time.Time              `json:"observed_at"`
}

// serializeToMessage marshals a snapshot into a Kafka message.
func serializeToMessage(at domain.Coordinates, snap domain.WeatherSnapshot) (kafkago.Message, error) {
	data, err := json.Marshal(publishedSnapshot{
		Coordinates: at,
		Snapshot:    snap,
		ObservedAt:  snap.ObservedAt(),
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize weather snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(at.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "location", Value: []byte(snap.Name)},
			{Key: "observed_at", Value: []byte(snap.ObservedAt().Format(time.RFC3339))},
		},
	}, nil
}
