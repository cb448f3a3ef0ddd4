// Package kafka wraps segmentio/kafka-go readers and writers that carry
// JSON-encoded pipeline notifications.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	"github.com/segmentio/kafka-go"
)

// Message is one record to publish. Key picks the partition and Value is
// marshalled to JSON.
type Message struct {
	Key   string
	Value any
}

type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Producer{
		writer: w,
		logger: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

// Publish writes msgs synchronously in one call.
func (p *Producer) Publish(ctx context.Context, msgs ...Message) error {
	out := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		value, err := json.Marshal(m.Value)
		if err != nil {
			return fmt.Errorf("marshaling message %q: %w", m.Key, err)
		}
		out = append(out, kafka.Message{Key: []byte(m.Key), Value: value})
	}
	if err := p.writer.WriteMessages(ctx, out...); err != nil {
		p.logger.Error("publish failed", "count", len(out), "error", err)
		return fmt.Errorf("publishing to kafka: %w", err)
	}
	p.logger.Debug("published", "count", len(out))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
