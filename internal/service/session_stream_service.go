package service

import (
	"context"

	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/internal/websocket"
	"agentic-reasoning-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type ISessionStreamService interface {
	Consume(ctx context.Context) error
}

// sessionStreamService forwards session events from the bus to websocket watchers.
type sessionStreamService struct {
	subscriber message.Subscriber
	topicName  string
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewSessionStreamService(subscriber message.Subscriber, topicName string, hub *websocket.Hub, log logger.ILogger) ISessionStreamService {
	return &sessionStreamService{
		subscriber: subscriber,
		topicName:  topicName,
		hub:        hub,
		logger:     log,
	}
}

func (s *sessionStreamService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *sessionStreamService) processMessage(msg *message.Message) {
	// Undeliverable events are acked; a retry cannot fix a bad payload.
	defer msg.Ack()

	env, err := events.Decode(msg.Payload)
	if err != nil {
		s.logger.Warn("SessionStream", "Dropping malformed session event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	delivered := s.hub.Send(env.SessionID, msg.Payload)
	s.logger.Debug("SessionStream", "Session event forwarded", map[string]interface{}{
		"session_id": env.SessionID,
		"type":       env.Type,
		"watchers":   delivered,
	})
}
