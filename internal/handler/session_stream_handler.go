package handler

import (
	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/internal/pkg/serverutils"
	"agentic-reasoning-be/internal/repository/memory"
	internalWS "agentic-reasoning-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SessionStreamHandler streams a session's results and traces as they are appended.
type SessionStreamHandler struct {
	sessions *memory.SessionRepository
	hub      *internalWS.Hub
	logger   logger.ILogger
}

func NewSessionStreamHandler(sessions *memory.SessionRepository, hub *internalWS.Hub, log logger.ILogger) *SessionStreamHandler {
	return &SessionStreamHandler{
		sessions: sessions,
		hub:      hub,
		logger:   log,
	}
}

func (h *SessionStreamHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if _, err := h.sessions.Get(sessionID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "Session not found"))
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SessionStreamHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("SessionStreamHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *SessionStreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/session/:session_id", h.ServeWs)
}
