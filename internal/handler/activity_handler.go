package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/service"
	"github.com/kenshokan/dojang-api/internal/utils"
)

// ActivityHandler exposes the grading and certification audit trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches audit trail endpoints to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.ActivityListRequest{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		Page:       page,
		PageSize:   pageSize,
	}
	if actorID, err := parseUintQuery(c, "actor_id"); err == nil && actorID > 0 {
		req.ActorID = &actorID
	}

	entries, err := h.service.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activity entries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity entries")
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
