package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/events"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducerKeysMessagesByRoutingKey(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{writer: w}

	err := p.Publish(context.Background(), events.ReservationStatusChanged, events.ReservationStatusPayload{ReservationID: 11, From: "requested", To: "confirmed"})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, events.ReservationStatusChanged, string(w.msgs[0].Key))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &body))
	assert.Equal(t, "confirmed", body["to"])
	assert.Equal(t, float64(11), body["reservation_id"])
}

func TestProducerReturnsWriteError(t *testing.T) {
	p := &Producer{writer: &recordingWriter{err: errors.New("leader not available")}}

	err := p.Publish(context.Background(), events.FriendshipCreated, events.FriendshipPayload{UserID: 1, FriendID: 2})
	require.EqualError(t, err, "leader not available")
}

func TestProducerClose(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{writer: w}
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	var nilProducer *Producer
	require.NoError(t, nilProducer.Close())
}
