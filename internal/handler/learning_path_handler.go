package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/prepnexus/prepnexus-api/internal/middleware"
	"github.com/prepnexus/prepnexus-api/internal/service"
	"github.com/prepnexus/prepnexus-api/internal/utils"
)

// LearningPathHandler wires learning path and course catalog endpoints.
type LearningPathHandler struct {
	service service.LearningPathService
	logger  zerolog.Logger
}

// NewLearningPathHandler constructs the handler.
func NewLearningPathHandler(service service.LearningPathService, logger zerolog.Logger) *LearningPathHandler {
	return &LearningPathHandler{
		service: service,
		logger:  logger.With().Str("component", "learning_path_handler").Logger(),
	}
}

// Register attaches learning path endpoints to the router group.
func (h *LearningPathHandler) Register(router fiber.Router) {
	router.Post("/generate", h.generate)
	router.Get("", h.get)
	router.Patch("/:id/complete", h.complete)
	router.Get("/courses", h.courses)
}

func (h *LearningPathHandler) generate(c *fiber.Ctx) error {
	items, err := h.service.Generate(requestContext(c), middleware.CurrentUsername(c))
	if err != nil {
		if errors.Is(err, service.ErrNoAssessmentYet) {
			return utils.SendError(c, fiber.StatusConflict, "take an assessment before generating a learning path")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "learning path generated", items)
}

func (h *LearningPathHandler) get(c *fiber.Ctx) error {
	items, err := h.service.Get(requestContext(c), middleware.CurrentUsername(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "learning path", items)
}

func (h *LearningPathHandler) complete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.MarkCompleted(requestContext(c), middleware.CurrentUsername(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "learning path item not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "learning path item completed", fiber.Map{"id": id})
}

func (h *LearningPathHandler) courses(c *fiber.Ctx) error {
	track := c.Query("track")
	courses, err := h.service.Courses(requestContext(c), track)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTrack) {
			return utils.SendError(c, fiber.StatusBadRequest, "unknown assessment track")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "course catalog", courses)
}

func (h *LearningPathHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
