package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherKeysByOrder(t *testing.T) {
	writer := &recordingWriter{}
	publisher := &KafkaPublisher{writer: writer, topic: "order-events"}

	err := publisher.Publish(context.Background(), OrderEvent{
		Type:          "order.placed",
		OrderID:       "ODABC",
		UserID:        3,
		Status:        "PENDING",
		PaymentStatus: "UNPAID",
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "ODABC", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "order.placed", string(msg.Headers[0].Value))

	var decoded OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, uint(3), decoded.UserID)
	assert.False(t, decoded.OccurredAt.IsZero())

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisherReturnsWriteError(t *testing.T) {
	publisher := &KafkaPublisher{writer: &recordingWriter{err: errors.New("broker down")}, topic: "order-events"}
	err := publisher.Publish(context.Background(), OrderEvent{Type: "order.placed", OrderID: "ODX"})
	assert.Error(t, err)
}

func TestNewKafkaPublisherValidation(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "order-events")
	assert.Error(t, err)
	_, err = NewKafkaPublisher([]string{" "}, "order-events")
	assert.Error(t, err)
	_, err = NewKafkaPublisher([]string{"127.0.0.1:9092"}, "")
	assert.Error(t, err)

	publisher, err := NewKafkaPublisher([]string{"127.0.0.1:9092"}, "order-events")
	require.NoError(t, err)
	assert.NoError(t, publisher.Close())
}

func TestNopPublisher(t *testing.T) {
	var publisher Publisher = NopPublisher{}
	assert.NoError(t, publisher.Publish(context.Background(), OrderEvent{}))
	assert.NoError(t, publisher.Close())
}
