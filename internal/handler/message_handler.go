package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/middleware"
	"github.com/prepnexus/prepnexus-api/internal/service"
	"github.com/prepnexus/prepnexus-api/internal/utils"
)

// MessageHandler wires direct messaging endpoints including the websocket upgrade.
type MessageHandler struct {
	service service.MessageService
	logger  zerolog.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(service service.MessageService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		logger:  logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register attaches messaging endpoints to the router group.
func (h *MessageHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
	router.Post("", h.send)
	router.Get("/conversation/:username", h.conversation)
	router.Post("/conversation/:username/read", h.markRead)
	router.Get("/unread", h.unread)
}

func (h *MessageHandler) handleConnection(conn *websocket.Conn) {
	username := websocketUsername(conn)
	if username == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "username missing"))
		_ = conn.Close()
		return
	}

	role := fmt.Sprint(conn.Locals("user_role"))
	correlation := fmt.Sprint(conn.Locals("correlation_id"))
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.MessageConnectionOptions{
		Username:      username,
		Role:          role,
		CorrelationID: correlation,
		Context:       baseCtx,
	}

	h.logger.Info().Str("username", username).Msg("message websocket connected")
	h.service.ServeConnection(conn, opts)
	h.logger.Info().Str("username", username).Msg("message websocket disconnected")
}

func (h *MessageHandler) send(c *fiber.Ctx) error {
	var payload dto.SendMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	sender := middleware.CurrentUsername(c)
	message, err := h.service.Send(requestContext(c), sender, userRoleFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			return utils.SendError(c, fiber.StatusBadRequest, "message content empty after sanitization")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccess(c, "message sent", message)
}

func (h *MessageHandler) conversation(c *fiber.Ctx) error {
	other := strings.TrimSpace(c.Params("username"))
	if other == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "conversation partner required")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	messages, err := h.service.Conversation(requestContext(c), middleware.CurrentUsername(c), other, limit)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "conversation", messages)
}

func (h *MessageHandler) markRead(c *fiber.Ctx) error {
	other := strings.TrimSpace(c.Params("username"))
	if other == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "conversation partner required")
	}

	if err := h.service.MarkRead(requestContext(c), middleware.CurrentUsername(c), other); err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "conversation marked read", fiber.Map{"with": other})
}

func (h *MessageHandler) unread(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount(requestContext(c), middleware.CurrentUsername(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "unread message count", fiber.Map{"count": count})
}

func (h *MessageHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

func websocketUsername(conn *websocket.Conn) string {
	if value := conn.Locals("username"); value != nil {
		if username, ok := value.(string); ok {
			return strings.TrimSpace(username)
		}
	}
	return ""
}
