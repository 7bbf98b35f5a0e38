package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/safar/printshop/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishOrderStatus(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}

	updated := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	event := NewOrderStatusEvent(&models.Order{
		ID:          42,
		OrderNumber: "ORD-1",
		UserID:      "u-1",
		Status:      models.OrderStatusShipped,
		UpdatedAt:   updated,
	})

	require.NoError(t, p.PublishOrderStatus(context.Background(), event))
	require.Len(t, w.messages, 1)
	assert.Equal(t, "42", string(w.messages[0].Key))

	var decoded OrderStatusEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestPublishOrderStatusWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{writer: &recordingWriter{err: boom}}

	err := p.PublishOrderStatus(context.Background(), OrderStatusEvent{OrderID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishOrderStatus(context.Background(), OrderStatusEvent{}))
	assert.NoError(t, p.Close())
}
