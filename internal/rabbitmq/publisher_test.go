package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/events"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishWritesJSONToExchange(t *testing.T) {
	ch := &fakeChannel{}
	pub := newPublisherWithChannel(ch, "app.events")

	err := pub.Publish(context.Background(), events.PostParticipantJoined, events.ParticipantJoinedPayload{PostID: 7, MemberID: 3, CurrentParticipants: 1, MaxParticipants: 4})
	require.NoError(t, err)

	assert.Equal(t, "app.events", ch.exchange)
	assert.Equal(t, events.PostParticipantJoined, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, float64(7), body["post_id"])
	assert.Equal(t, float64(1), body["current_participants"])
}

func TestPublishReturnsChannelError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel blocked")}
	pub := newPublisherWithChannel(ch, "app.events")

	err := pub.Publish(context.Background(), events.FriendshipCreated, map[string]any{"user_id": 1})
	require.EqualError(t, err, "channel blocked")
}

func TestPublishAfterCloseFails(t *testing.T) {
	ch := &fakeChannel{}
	pub := newPublisherWithChannel(ch, "app.events")

	require.NoError(t, pub.Close())
	assert.True(t, ch.closed)

	err := pub.Publish(context.Background(), events.FriendshipCreated, nil)
	require.ErrorIs(t, err, amqp.ErrClosed)
}
