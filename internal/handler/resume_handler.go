package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/middleware"
	"github.com/prepnexus/prepnexus-api/internal/service"
	"github.com/prepnexus/prepnexus-api/internal/utils"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

const maxResumeBytes = 5 << 20

// ResumeHandler wires resume scoring and LinkedIn analysis endpoints.
type ResumeHandler struct {
	service service.ResumeService
	logger  zerolog.Logger
}

// NewResumeHandler constructs the handler.
func NewResumeHandler(service service.ResumeService, logger zerolog.Logger) *ResumeHandler {
	return &ResumeHandler{
		service: service,
		logger:  logger.With().Str("component", "resume_handler").Logger(),
	}
}

// Register attaches resume endpoints to the router group.
func (h *ResumeHandler) Register(router fiber.Router) {
	router.Post("", h.analyze)
	router.Get("", h.get)
	router.Post("/linkedin", h.linkedin)
}

func (h *ResumeHandler) analyze(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "resume file required")
	}
	if fileHeader.Size > maxResumeBytes {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "resume exceeds 5MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read resume file")
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read resume file")
	}

	username := middleware.CurrentUsername(c)
	track := c.FormValue("track")

	analysis, err := h.service.Analyze(requestContext(c), username, track, fileHeader.Filename, data)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "resume analyzed", analysis)
}

func (h *ResumeHandler) get(c *fiber.Ctx) error {
	analysis, err := h.service.Get(requestContext(c), middleware.CurrentUsername(c))
	if err != nil {
		if errors.Is(err, service.ErrResumeNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "no resume uploaded yet")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "resume analysis", analysis)
}

func (h *ResumeHandler) linkedin(c *fiber.Ctx) error {
	var payload dto.LinkedInAnalyzeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	analysis, err := h.service.AnalyzeLinkedIn(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "linkedin profile analyzed", analysis)
}

func (h *ResumeHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidTrack):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown assessment track")
	case errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "only PDF or plain-text resumes are accepted")
	case errors.Is(err, service.ErrEmptyResume):
		return utils.SendError(c, fiber.StatusBadRequest, "resume has no readable text")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrRateLimited):
		return utils.SendError(c, fiber.StatusTooManyRequests, "analyzer is rate limited, try again shortly")
	case errors.Is(err, ai.ErrQuotaExhausted):
		return utils.SendError(c, fiber.StatusPaymentRequired, "analyzer quota exhausted")
	case errors.Is(err, ai.ErrParse), errors.Is(err, ai.ErrUnavailable):
		return utils.SendError(c, fiber.StatusBadGateway, "analyzer unavailable")
	default:
		return h.internalError(c, err)
	}
}

func (h *ResumeHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
