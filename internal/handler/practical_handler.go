package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/service"
	"github.com/kenshokan/dojang-api/internal/utils"
)

// PracticalHandler wires practical evaluation endpoints for coaches.
type PracticalHandler struct {
	service service.PracticalService
	logger  zerolog.Logger
}

// NewPracticalHandler constructs the handler.
func NewPracticalHandler(service service.PracticalService, logger zerolog.Logger) *PracticalHandler {
	return &PracticalHandler{
		service: service,
		logger:  logger.With().Str("component", "practical_handler").Logger(),
	}
}

// Register attaches practical evaluation endpoints to the router group.
func (h *PracticalHandler) Register(router fiber.Router) {
	router.Post("/", h.submitScores)
	router.Get("/", h.getByPair)
}

func (h *PracticalHandler) submitScores(c *fiber.Ctx) error {
	var payload dto.PracticalScoresRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	evaluation, err := h.service.SubmitScores(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrMethodScoreExceedsCap):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrResultFinalized):
			return utils.SendError(c, fiber.StatusConflict, "final result already computed for this pair")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to submit practical scores")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit practical scores")
		}
	}

	return utils.SendSuccess(c, "practical scores recorded", evaluation)
}

func (h *PracticalHandler) getByPair(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "exam_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam identifier")
	}
	studentID, err := parseUintQuery(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student identifier")
	}

	evaluation, err := h.service.GetByPair(c.Context(), examID, studentID)
	if err != nil {
		if errors.Is(err, service.ErrPracticalNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "practical evaluation not found")
		}
		h.logger.Error().Err(err).Msg("failed to fetch practical evaluation")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch practical evaluation")
	}

	return utils.SendSuccess(c, "practical evaluation retrieved", evaluation)
}
