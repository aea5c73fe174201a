package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/service"
	"github.com/kenshokan/dojang-api/internal/utils"
)

// ResultHandler wires final result endpoints.
type ResultHandler struct {
	service service.ResultService
	logger  zerolog.Logger
}

// NewResultHandler constructs the handler.
func NewResultHandler(service service.ResultService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		logger:  logger.With().Str("component", "result_handler").Logger(),
	}
}

// Register attaches result endpoints to the router group.
func (h *ResultHandler) Register(router fiber.Router) {
	router.Post("/compute", h.compute)
	router.Get("/", h.getByPair)
}

func (h *ResultHandler) compute(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "exam_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam identifier")
	}
	studentID, err := parseUintQuery(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student identifier")
	}

	result, err := h.service.Compute(c.Context(), examID, studentID, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrTheoryNotFinalized):
			return utils.SendError(c, fiber.StatusConflict, "theory score is not finalized yet")
		case errors.Is(err, service.ErrPracticalNotSubmitted):
			return utils.SendError(c, fiber.StatusConflict, "practical scores have not been submitted")
		case errors.Is(err, service.ErrAlreadyComputed):
			return utils.SendError(c, fiber.StatusConflict, "final result already computed")
		default:
			h.logger.Error().Err(err).Msg("failed to compute result")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute result")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "result computed", result)
}

func (h *ResultHandler) getByPair(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "exam_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam identifier")
	}
	studentID, err := parseUintQuery(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student identifier")
	}

	result, err := h.service.GetByPair(c.Context(), examID, studentID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "result not found")
		}
		h.logger.Error().Err(err).Msg("failed to fetch result")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch result")
	}

	return utils.SendSuccess(c, "result retrieved", result)
}
