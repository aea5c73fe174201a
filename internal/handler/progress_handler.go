package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/service"
	"github.com/kenshokan/dojang-api/internal/utils"
)

// ProgressHandler exposes a student's aggregated exam progress.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches the progress endpoint to the router group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/me", h.getOwn)
	router.Get("/:studentId", h.getByStudent)
}

func (h *ProgressHandler) getOwn(c *fiber.Ctx) error {
	return h.respond(c, userIDFromContext(c))
}

func (h *ProgressHandler) getByStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student identifier")
	}
	switch userRoleFromContext(c) {
	case "admin", "coach", "grader":
	default:
		if studentID != userIDFromContext(c) {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
	}
	return h.respond(c, studentID)
}

func (h *ProgressHandler) respond(c *fiber.Ctx, studentID uint) error {
	progress, err := h.service.GetProgress(c.Context(), studentID)
	if err != nil {
		h.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to fetch progress")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch progress")
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}
