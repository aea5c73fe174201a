package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kenshokan/dojang-api/internal/service"
	"github.com/kenshokan/dojang-api/internal/utils"
)

// CertificateHandler wires certificate issuance and lookup endpoints.
type CertificateHandler struct {
	service service.CertificateService
	logger  zerolog.Logger
}

// NewCertificateHandler constructs the handler.
func NewCertificateHandler(service service.CertificateService, logger zerolog.Logger) *CertificateHandler {
	return &CertificateHandler{
		service: service,
		logger:  logger.With().Str("component", "certificate_handler").Logger(),
	}
}

// Register attaches certificate endpoints to the router group.
func (h *CertificateHandler) Register(router fiber.Router) {
	router.Post("/issue", h.issue)
	router.Get("/", h.getByPair)
	router.Get("/serial/:serial", h.getBySerial)
}

func (h *CertificateHandler) issue(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "exam_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam identifier")
	}
	studentID, err := parseUintQuery(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student identifier")
	}

	certificate, err := h.service.Issue(c.Context(), examID, studentID, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResultNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "result not found")
		case errors.Is(err, service.ErrNotPassed):
			return utils.SendError(c, fiber.StatusConflict, "student did not pass this exam")
		case errors.Is(err, service.ErrAlreadyIssued):
			return utils.SendError(c, fiber.StatusConflict, "certificate already issued")
		default:
			h.logger.Error().Err(err).Msg("failed to issue certificate")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to issue certificate")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "certificate issued", certificate)
}

func (h *CertificateHandler) getByPair(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "exam_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam identifier")
	}
	studentID, err := parseUintQuery(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student identifier")
	}

	certificate, err := h.service.GetByPair(c.Context(), examID, studentID)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "certificate not found")
		}
		h.logger.Error().Err(err).Msg("failed to fetch certificate")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch certificate")
	}

	return utils.SendSuccess(c, "certificate retrieved", certificate)
}

func (h *CertificateHandler) getBySerial(c *fiber.Ctx) error {
	serial := c.Params("serial")
	if serial == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "missing serial")
	}

	certificate, err := h.service.GetBySerial(c.Context(), serial)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "certificate not found")
		}
		h.logger.Error().Err(err).Str("serial", serial).Msg("failed to fetch certificate")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch certificate")
	}

	return utils.SendSuccess(c, "certificate retrieved", certificate)
}
