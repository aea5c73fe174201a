package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/models"
	"github.com/kenshokan/dojang-api/internal/repository"
	"github.com/kenshokan/dojang-api/internal/service"
	"github.com/kenshokan/dojang-api/internal/utils"
)

// ExamHandler wires exam administration endpoints.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register attaches exam endpoints to the router group.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Post("/", h.create)
	router.Post("/:id/publish", h.publish)
	router.Post("/:id/close", h.close)
}

func (h *ExamHandler) list(c *fiber.Ctx) error {
	filter := repository.ExamFilter{BeltLevel: c.Query("belt_level")}

	if status := c.Query("status"); status != "" {
		examStatus := models.ExamStatus(status)
		filter.Status = &examStatus
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	filter.Page = page
	filter.PageSize = pageSize

	exams, total, err := h.service.List(c.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list exams")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list exams")
	}

	return utils.SendSuccess(c, "exams retrieved", fiber.Map{"items": exams, "total": total})
}

func (h *ExamHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	exam, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		h.logger.Error().Err(err).Uint("exam_id", id).Msg("failed to fetch exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch exam")
	}

	return utils.SendSuccess(c, "exam retrieved", exam)
}

func (h *ExamHandler) create(c *fiber.Ctx) error {
	var payload dto.ExamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	exam, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassMark),
			errors.Is(err, service.ErrInvalidQuestion),
			errors.Is(err, service.ErrQuestionScoresExceedMax),
			isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to create exam")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create exam")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", exam)
}

func (h *ExamHandler) publish(c *fiber.Ctx) error {
	return h.transition(c, h.service.Publish, "exam published")
}

func (h *ExamHandler) close(c *fiber.Ctx) error {
	return h.transition(c, h.service.Close, "exam closed")
}

func (h *ExamHandler) transition(c *fiber.Ctx, op func(ctx context.Context, examID uint) (dto.ExamResponse, error), message string) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	exam, err := op(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrInvalidTransition):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			h.logger.Error().Err(err).Uint("exam_id", id).Msg("failed to change exam status")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to change exam status")
		}
	}

	return utils.SendSuccess(c, message, exam)
}
