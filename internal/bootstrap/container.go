package bootstrap

import (
	"context"

	"agentic-reasoning-be/internal/config"
	"agentic-reasoning-be/internal/controller"
	"agentic-reasoning-be/internal/handler"
	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/internal/repository/memory"
	"agentic-reasoning-be/internal/service"
	"agentic-reasoning-be/internal/websocket"
	"agentic-reasoning-be/pkg/events"
	"agentic-reasoning-be/pkg/reasoning/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	ReasoningController controller.IReasoningController
	BatchController     controller.IBatchController

	// Background Services (Exposed for main.go to run)
	SessionStreamService service.ISessionStreamService

	// WebSockets
	SessionStreamHandler *handler.SessionStreamHandler
	WebSocketHub         *websocket.Hub

	Resolver *factory.Resolver
	Sessions *memory.SessionRepository
	Logger   logger.ILogger

	pubSub *gochannel.GoChannel
}

// NewContainer wires every dependency. The hub runs until ctx is done.
func NewContainer(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) *Container {
	// 1. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	publisher := events.NewPublisher(pubSub, events.TopicSessionEvents)

	// 2. Backend resolution and session state
	resolver := factory.NewResolver(
		func() factory.Configuration {
			return factory.ConfigurationFromEnv(config.LoadBackend(), cfg.Reasoning)
		},
		factory.DefaultBuilders(cfg.Reasoning),
		sysLogger,
	)
	sessions := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.CleanupInterval)

	// 3. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/session_stream.log")
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run(ctx)

	// 4. Services
	reasoningService := service.NewReasoningService(resolver, sessions, publisher, sysLogger)
	batchService := service.NewBatchService(resolver, sessions, publisher, cfg.App, cfg.Batch, sysLogger)
	streamService := service.NewSessionStreamService(pubSub, events.TopicSessionEvents, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		ReasoningController:  controller.NewReasoningController(reasoningService),
		BatchController:      controller.NewBatchController(batchService),
		SessionStreamService: streamService,
		SessionStreamHandler: handler.NewSessionStreamHandler(sessions, wsHub, wsLogger),
		WebSocketHub:         wsHub,
		Resolver:             resolver,
		Sessions:             sessions,
		Logger:               sysLogger,
		pubSub:               pubSub,
	}
}

func (c *Container) Close() error {
	return c.pubSub.Close()
}
