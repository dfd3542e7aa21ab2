package kafka

import (
	"context"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryWriter struct {
	msgs   []kafkaGo.Message
	closed bool
}

func (w *memoryWriter) WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memoryWriter) Close() error {
	w.closed = true
	return nil
}

func TestEncode(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := Encode(Event{Type: "payout.created", EntityID: 42, OccurredAt: at, Payload: map[string]string{"amount": "105.00"}})
	require.NoError(t, err)

	assert.Equal(t, "payout.created:42", string(msg.Key))
	assert.Equal(t, at, msg.Time)

	decoded := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "payout.created", decoded["type"])
	assert.Equal(t, "105.00", decoded["payload"].(map[string]interface{})["amount"])
}

func TestPublish(t *testing.T) {
	w := &memoryWriter{}
	p := &publisher{writer: w}

	require.NoError(t, p.Publish(context.Background(),
		Event{Type: "commission.created", EntityID: 1},
		Event{Type: "commission.approved", EntityID: 1},
	))
	require.NoError(t, p.Publish(context.Background()))
	require.NoError(t, p.Close())

	assert.Len(t, w.msgs, 2)
	assert.True(t, w.closed)
}

func TestNoopPublisher(t *testing.T) {
	p := NewPublisher(Config{})
	assert.NoError(t, p.Publish(context.Background(), Event{Type: "x"}))
	assert.NoError(t, p.Close())
}
