package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer used by the publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events to the kafka topic, keyed by the resolved URL,
// so that events of the same article land in the same partition.
type Kafka struct {
	lg *slog.Logger
	w  messageWriter
}

// KafkaOpts defines options for the Kafka publisher.
type KafkaOpts struct {
	Logger       *slog.Logger
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// NewKafka makes new Kafka publisher.
func NewKafka(opts KafkaOpts) *Kafka {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	return &Kafka{
		lg: opts.Logger.With(slog.String("prefix", "kafka")),
		w: &kafka.Writer{
			Addr:         kafka.TCP(opts.Brokers...),
			Topic:        opts.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: opts.WriteTimeout,
		},
	}
}

// Publish writes the event to the topic.
func (k *Kafka) Publish(ctx context.Context, e Event) error {
	bts, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.Source.URL),
		Value: bts,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}

	if err = k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to kafka: %w", err)
	}

	k.lg.DebugContext(ctx, "event published",
		slog.String("id", e.ID),
		slog.String("type", e.Type),
		slog.String("url", e.Source.URL))

	return nil
}

// Close flushes the pending messages and closes the writer.
func (k *Kafka) Close() error { return k.w.Close() }
