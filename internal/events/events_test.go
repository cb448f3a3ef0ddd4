package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, ev StageComplete) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestRunTrackerFiresWhenAllStagesReport(t *testing.T) {
	var ready []string
	tr := NewRunTracker([]string{StageAuthority, StageIndex}, func(_ context.Context, runID string) error {
		ready = append(ready, runID)
		return nil
	})
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, tr.Handle(ctx, nil, encode(t, StageComplete{RunID: "r1", Stage: StageAuthority, At: at})))
	require.NoError(t, tr.Handle(ctx, nil, encode(t, StageComplete{RunID: "r2", Stage: StageIndex, At: at})))
	assert.Empty(t, ready)

	require.NoError(t, tr.Handle(ctx, nil, encode(t, StageComplete{RunID: "r1", Stage: StageIndex, At: at})))
	assert.Equal(t, []string{"r1"}, ready)
	assert.NotContains(t, tr.seen, "r1")
	assert.Contains(t, tr.seen, "r2")
}

func TestRunTrackerRejectsBadMessages(t *testing.T) {
	tr := NewRunTracker([]string{StageIndex}, func(context.Context, string) error { return nil })
	assert.Error(t, tr.Handle(context.Background(), nil, []byte("{not json")))
	assert.Error(t, tr.Handle(context.Background(), nil, []byte(`{"stage":"index"}`)))
}

func TestNewPublisherDisabled(t *testing.T) {
	p := NewPublisher(configDisabled())
	_, ok := p.(NopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), StageComplete{RunID: "x"}))
	assert.NoError(t, p.Close())
}

func configDisabled() config.KafkaConfig {
	return config.KafkaConfig{Enabled: false, Brokers: []string{"localhost:9092"}}
}
