package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/middleware"
	"github.com/prepnexus/prepnexus-api/internal/service"
	"github.com/prepnexus/prepnexus-api/internal/utils"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

const chatStreamTimeout = 2 * time.Minute

// CareerChatHandler streams assistant replies over server-sent events.
type CareerChatHandler struct {
	service service.CareerChatService
	logger  zerolog.Logger
}

// NewCareerChatHandler constructs the handler.
func NewCareerChatHandler(service service.CareerChatService, logger zerolog.Logger) *CareerChatHandler {
	return &CareerChatHandler{
		service: service,
		logger:  logger.With().Str("component", "career_chat_handler").Logger(),
	}
}

// Register attaches the chat endpoint to the router group.
func (h *CareerChatHandler) Register(router fiber.Router) {
	router.Post("/stream", h.stream)
}

func (h *CareerChatHandler) stream(c *fiber.Ctx) error {
	var payload dto.CareerChatRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	// Validate up front so malformed requests still get a JSON error
	// instead of a broken event stream.
	username := middleware.CurrentUsername(c)
	logger := requestLogger(h.logger, c)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// The fiber context is recycled once the stream writer starts, so the
	// goroutine below must not touch it.
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), chatStreamTimeout)
		defer cancel()

		err := h.service.Stream(ctx, username, payload, func(delta string) error {
			return writeSSEDelta(w, delta)
		})
		if err != nil {
			logger.Warn().Err(err).Str("username", username).Msg("career chat stream ended with error")
			_ = writeSSEEvent(w, "error", streamErrorMessage(err))
			return
		}

		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
		_ = w.Flush()
	}))

	return nil
}

func writeSSEDelta(w *bufio.Writer, delta string) error {
	encoded, err := json.Marshal(fiber.Map{"delta": delta})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", encoded); err != nil {
		return err
	}
	return w.Flush()
}

func writeSSEEvent(w *bufio.Writer, event, message string) error {
	encoded, err := json.Marshal(fiber.Map{"message": message})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, encoded); err != nil {
		return err
	}
	return w.Flush()
}

func streamErrorMessage(err error) string {
	switch {
	case isValidationError(err):
		return "chat history is invalid"
	case errors.Is(err, ai.ErrRateLimited):
		return "assistant is rate limited, try again shortly"
	case errors.Is(err, ai.ErrQuotaExhausted):
		return "assistant quota exhausted"
	default:
		return "assistant unavailable"
	}
}
