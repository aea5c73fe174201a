package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/service"
	"github.com/kenshokan/dojang-api/internal/utils"
)

// AttemptHandler wires theory attempt session endpoints for students.
type AttemptHandler struct {
	service service.AttemptService
	logger  zerolog.Logger
}

// NewAttemptHandler constructs the handler.
func NewAttemptHandler(service service.AttemptService, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service: service,
		logger:  logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches attempt endpoints to the router group.
func (h *AttemptHandler) Register(router fiber.Router) {
	router.Post("/start", h.start)
	router.Post("/:id/answers", h.recordAnswer)
	router.Post("/:id/focus-loss", h.recordFocusLoss)
	router.Post("/:id/submit", h.submit)
	router.Get("/", h.getByPair)
}

func (h *AttemptHandler) start(c *fiber.Ctx) error {
	var payload dto.StartAttemptRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	attempt, err := h.service.Start(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrAlreadyOpen):
			return utils.SendError(c, fiber.StatusConflict, "an open session already exists for this exam")
		case errors.Is(err, service.ErrExamNotPublished):
			return utils.SendError(c, fiber.StatusConflict, "exam is not open for attempts")
		case errors.Is(err, service.ErrOutsideSchedule):
			return utils.SendError(c, fiber.StatusConflict, "exam is outside its scheduled window")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to start attempt")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to start attempt")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt started", attempt)
}

func (h *AttemptHandler) recordAnswer(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session identifier")
	}

	var payload dto.RecordAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	attempt, err := h.service.RecordAnswer(c.Context(), sessionID, userIDFromContext(c), payload)
	if err != nil {
		return h.sessionError(c, err, "failed to record answer")
	}

	return utils.SendSuccess(c, "answer recorded", attempt)
}

func (h *AttemptHandler) recordFocusLoss(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session identifier")
	}

	attempt, err := h.service.RecordFocusLoss(c.Context(), sessionID, userIDFromContext(c))
	if err != nil {
		return h.sessionError(c, err, "failed to record focus loss")
	}

	return utils.SendSuccess(c, "focus loss recorded", attempt)
}

func (h *AttemptHandler) submit(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session identifier")
	}

	attempt, err := h.service.Submit(c.Context(), sessionID, userIDFromContext(c), service.SubmitActorStudent)
	if err != nil {
		return h.sessionError(c, err, "failed to submit attempt")
	}

	return utils.SendSuccess(c, "attempt submitted", attempt)
}

func (h *AttemptHandler) getByPair(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "exam_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam identifier")
	}

	attempt, err := h.service.GetByPair(c.Context(), examID, userIDFromContext(c))
	if err != nil {
		return h.sessionError(c, err, "failed to fetch attempt")
	}

	return utils.SendSuccess(c, "attempt retrieved", attempt)
}

func (h *AttemptHandler) sessionError(c *fiber.Ctx, err error, logMessage string) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrNotSessionOwner):
		return utils.SendError(c, fiber.StatusForbidden, "session belongs to another student")
	case errors.Is(err, service.ErrSessionClosed):
		return utils.SendError(c, fiber.StatusConflict, "session is already closed")
	case errors.Is(err, service.ErrUnknownQuestion):
		return utils.SendError(c, fiber.StatusBadRequest, "question does not belong to this exam")
	case errors.Is(err, service.ErrAnswerMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg(logMessage)
		return utils.SendError(c, fiber.StatusInternalServerError, logMessage)
	}
}
