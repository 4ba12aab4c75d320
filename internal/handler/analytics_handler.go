package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/service"
	"github.com/prepnexus/prepnexus-api/internal/utils"
)

// AnalyticsHandler wires the TPO dashboard endpoint.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches analytics endpoints to the router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
}

func (h *AnalyticsHandler) dashboard(c *fiber.Ctx) error {
	snapshot, err := h.service.Dashboard(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "placement analytics", snapshot)
}
