package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// TopicSessionEvents carries everything appended to a reasoning session.
const TopicSessionEvents = "reasoning.session"

const (
	TypeResultAppended = "RESULT_APPENDED"
	TypeTraceAppended  = "TRACE_APPENDED"
	TypeSessionCleared = "SESSION_CLEARED"
	TypeBatchCompleted = "BATCH_COMPLETED"
)

// Event is one change to a session as seen by stream watchers.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// SessionEvent is the Event the reasoning and batch services publish. Data is
// already in response shape, so watchers see the same JSON as API callers.
type SessionEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e SessionEvent) EventType() string               { return e.Type }
func (e SessionEvent) Payload() map[string]interface{} { return e.Data }
func (e SessionEvent) Timestamp() time.Time            { return e.OccurredAt }

// Envelope is the wire form of a session event, both on the bus and on the websocket.
type Envelope struct {
	Type       string                 `json:"type"`
	SessionID  string                 `json:"session_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func Decode(payload []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode session event: %w", err)
	}
	if env.SessionID == "" {
		return nil, errors.New("decode session event: missing session_id")
	}
	return &env, nil
}

// Publisher puts session events on a watermill topic.
type Publisher struct {
	pub   message.Publisher
	topic string
}

func NewPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{pub: pub, topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, sessionID string, evt Event) error {
	payload, err := json.Marshal(Envelope{
		Type:       evt.EventType(),
		SessionID:  sessionID,
		OccurredAt: evt.Timestamp(),
		Data:       evt.Payload(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", evt.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("session_id", sessionID)
	msg.Metadata.Set("event_type", evt.EventType())

	return p.pub.Publish(p.topic, msg)
}
