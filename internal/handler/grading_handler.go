package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/service"
	"github.com/kenshokan/dojang-api/internal/utils"
)

// GradingHandler wires essay grading endpoints for graders.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("/sessions/:id/essay-scores", h.scoreEssay)
}

func (h *GradingHandler) scoreEssay(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session identifier")
	}

	var payload dto.EssayScoreRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	attempt, err := h.service.ScoreEssay(c.Context(), sessionID, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "session not found")
		case errors.Is(err, service.ErrNotClosed):
			return utils.SendError(c, fiber.StatusConflict, "session has not been submitted yet")
		case errors.Is(err, service.ErrUnknownEssayQuestion):
			return utils.SendError(c, fiber.StatusBadRequest, "question is not an essay question of this exam")
		case errors.Is(err, service.ErrInvalidScore):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("session_id", sessionID).Msg("failed to score essay")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to score essay")
		}
	}

	return utils.SendSuccess(c, "essay scored", attempt)
}
