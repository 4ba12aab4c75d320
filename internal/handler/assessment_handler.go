package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/middleware"
	"github.com/prepnexus/prepnexus-api/internal/service"
	"github.com/prepnexus/prepnexus-api/internal/utils"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

// AssessmentHandler wires assessment lifecycle endpoints.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches assessment endpoints to the router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Get("/tracks", h.tracks)
	router.Post("/start", h.start)
	router.Post("/submit", h.submit)
	router.Get("/latest", h.latest)
	router.Get("/history", h.history)
}

func (h *AssessmentHandler) tracks(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "assessment tracks", h.service.Tracks())
}

func (h *AssessmentHandler) start(c *fiber.Ctx) error {
	var payload dto.GenerateAssessmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	username := middleware.CurrentUsername(c)
	response, err := h.service.Start(requestContext(c), username, payload.Track)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assessment generated", response)
}

func (h *AssessmentHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitAssessmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	username := middleware.CurrentUsername(c)
	response, err := h.service.Submit(requestContext(c), username, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assessment submitted", response)
}

func (h *AssessmentHandler) latest(c *fiber.Ctx) error {
	result, err := h.service.Latest(requestContext(c), middleware.CurrentUsername(c))
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "no assessment result found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "latest assessment result", result)
}

func (h *AssessmentHandler) history(c *fiber.Ctx) error {
	results, err := h.service.History(requestContext(c), middleware.CurrentUsername(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assessment history", results)
}

func (h *AssessmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidTrack):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown assessment track")
	case errors.Is(err, service.ErrIncompleteSubmission):
		return utils.SendError(c, fiber.StatusBadRequest, "every question needs an answer")
	case errors.Is(err, service.ErrAttemptNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assessment attempt not found or expired")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrRateLimited):
		return utils.SendError(c, fiber.StatusTooManyRequests, "question generator is rate limited, try again shortly")
	case errors.Is(err, ai.ErrQuotaExhausted):
		return utils.SendError(c, fiber.StatusPaymentRequired, "question generator quota exhausted")
	case errors.Is(err, ai.ErrParse), errors.Is(err, ai.ErrUnavailable):
		return utils.SendError(c, fiber.StatusBadGateway, "question generator unavailable")
	default:
		return h.internalError(c, err)
	}
}

func (h *AssessmentHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
