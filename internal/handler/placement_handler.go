package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/middleware"
	"github.com/prepnexus/prepnexus-api/internal/service"
	"github.com/prepnexus/prepnexus-api/internal/utils"
)

// PlacementHandler wires placement round, shortlist and batch import endpoints.
type PlacementHandler struct {
	service service.PlacementService
	logger  zerolog.Logger
}

// NewPlacementHandler constructs the handler.
func NewPlacementHandler(service service.PlacementService, logger zerolog.Logger) *PlacementHandler {
	return &PlacementHandler{
		service: service,
		logger:  logger.With().Str("component", "placement_handler").Logger(),
	}
}

// RegisterTPO attaches the TPO-only management endpoints.
func (h *PlacementHandler) RegisterTPO(router fiber.Router) {
	router.Post("/rounds", h.createRound)
	router.Patch("/rounds/:id/status", h.updateStatus)
	router.Post("/rounds/:id/shortlist", h.shortlist)
	router.Get("/rounds/:id/shortlist", h.listShortlist)
	router.Post("/students/import", h.batchImport)
}

// RegisterShared attaches endpoints available to any authenticated user.
func (h *PlacementHandler) RegisterShared(router fiber.Router) {
	router.Get("/rounds", h.listRounds)
	router.Get("/shortlists", h.myShortlists)
}

func (h *PlacementHandler) createRound(c *fiber.Ctx) error {
	var payload dto.CreateRoundRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	round, err := h.service.CreateRound(requestContext(c), middleware.CurrentUsername(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "placement round created", round)
}

func (h *PlacementHandler) listRounds(c *fiber.Ctx) error {
	rounds, err := h.service.ListRounds(requestContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "placement rounds", rounds)
}

func (h *PlacementHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UpdateRoundStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateRoundStatus(requestContext(c), id, payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "round status updated", fiber.Map{"id": id, "status": payload.Status})
}

func (h *PlacementHandler) shortlist(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ShortlistRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entries, err := h.service.Shortlist(requestContext(c), middleware.CurrentUsername(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "students shortlisted", entries)
}

func (h *PlacementHandler) listShortlist(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.service.ListShortlist(requestContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "round shortlist", entries)
}

func (h *PlacementHandler) myShortlists(c *fiber.Ctx) error {
	entries, err := h.service.StudentShortlists(requestContext(c), middleware.CurrentUsername(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "your shortlists", entries)
}

func (h *PlacementHandler) batchImport(c *fiber.Ctx) error {
	var payload dto.BatchImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.BatchImport(requestContext(c), middleware.CurrentUsername(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "batch import processed", result)
}

func (h *PlacementHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRoundNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "placement round not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *PlacementHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
