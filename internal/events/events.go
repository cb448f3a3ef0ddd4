// Package events announces finished pipeline stages so running search
// services can pick up fresh outputs.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/kafka"
)

const (
	StageAuthority = "authority"
	StageIndex     = "index"
)

// StageComplete reports that a stage wrote its output file.
type StageComplete struct {
	RunID string    `json:"run_id"`
	Stage string    `json:"stage"`
	Path  string    `json:"path"`
	At    time.Time `json:"at"`
}

// Publisher sends stage notifications.
type Publisher interface {
	Publish(ctx context.Context, events ...StageComplete) error
	Close() error
}

// NopPublisher drops every event. Used when kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...StageComplete) error { return nil }
func (NopPublisher) Close() error { return nil }

type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{producer: kafka.NewProducer(cfg, cfg.Topics.StageComplete)}
}

// NewPublisher returns a kafka publisher when enabled and a no-op otherwise.
func NewPublisher(cfg config.KafkaConfig) Publisher {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(cfg)
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...StageComplete) error {
	msgs := make([]kafka.Message, len(events))
	for i, ev := range events {
		msgs[i] = kafka.Message{Key: ev.RunID, Value: ev}
	}
	return p.producer.Publish(ctx, msgs...)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// RunTracker collects stage notifications for one run and calls onReady
// once every stage in want has reported.
type RunTracker struct {
	want    []string
	onReady func(ctx context.Context, runID string) error
	seen    map[string]map[string]bool
	logger  *slog.Logger
}

func NewRunTracker(want []string, onReady func(ctx context.Context, runID string) error) *RunTracker {
	return &RunTracker{
		want:    want,
		onReady: onReady,
		seen:    make(map[string]map[string]bool),
		logger:  slog.Default().With("component", "stage-tracker"),
	}
}

// Handle is a kafka.Handler. Messages are delivered one at a time by the
// consumer so no locking is needed.
func (t *RunTracker) Handle(ctx context.Context, _, value []byte) error {
	ev, err := kafka.DecodeJSON[StageComplete](value)
	if err != nil {
		return err
	}
	if ev.RunID == "" || ev.Stage == "" {
		return fmt.Errorf("stage event missing run id or stage")
	}
	stages, ok := t.seen[ev.RunID]
	if !ok {
		stages = make(map[string]bool, len(t.want))
		t.seen[ev.RunID] = stages
	}
	stages[ev.Stage] = true
	t.logger.Info("stage complete", "run_id", ev.RunID, "stage", ev.Stage, "path", ev.Path)

	for _, s := range t.want {
		if !stages[s] {
			return nil
		}
	}
	delete(t.seen, ev.RunID)
	return t.onReady(ctx, ev.RunID)
}

// NewConsumer subscribes tracker to the stage topic.
func NewConsumer(cfg config.KafkaConfig, tracker *RunTracker) *kafka.Consumer {
	return kafka.NewConsumer(cfg, cfg.Topics.StageComplete, tracker.Handle)
}
