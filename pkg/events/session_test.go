package events

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRoundTrip(t *testing.T) {
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := bus.Subscribe(ctx, TopicSessionEvents)
	require.NoError(t, err)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pub := NewPublisher(bus, TopicSessionEvents)
	require.NoError(t, pub.Publish(ctx, "s-1", SessionEvent{
		Type:       TypeResultAppended,
		Data:       map[string]interface{}{"final_answer": "84"},
		OccurredAt: at,
	}))

	select {
	case msg := <-messages:
		msg.Ack()
		env, err := Decode(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, "s-1", env.SessionID)
		assert.Equal(t, TypeResultAppended, env.Type)
		assert.Equal(t, "84", env.Data["final_answer"])
		assert.True(t, at.Equal(env.OccurredAt))
		assert.Equal(t, "s-1", msg.Metadata.Get("session_id"))
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"type":"X"}`))
	assert.Error(t, err)
}
