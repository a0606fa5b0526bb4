package http

import (
	"errors"
	"strconv"

	"github.com/NeuralTrust/SiteGuard/pkg/app/eventlog"
	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listSecurityLogsHandler struct {
	logger *logrus.Logger
	events eventlog.Service
}

func NewListSecurityLogsHandler(logger *logrus.Logger, events eventlog.Service) Handler {
	return &listSecurityLogsHandler{
		logger: logger,
		events: events,
	}
}

// Handle @Summary      List security events
// @Description  Newest first, optionally filtered by severity and type
// @Tags         Security
// @Param        Authorization header string true "Admin bearer token"
// @Param        limit query int false "Page size" default(100)
// @Param        offset query int false "Page offset" default(0)
// @Param        severity query string false "low, medium or high"
// @Param        type query string false "Event type"
// @Produce      json
// @Success      200 {object} security.Page
// @Failure      400 {object} map[string]interface{}
// @Router       /api/security/logs [get]
func (h *listSecurityLogsHandler) Handle(c *fiber.Ctx) error {
	filter := security.Filter{
		Severity: security.Severity(c.Query("severity")),
		Type:     security.Outcome(c.Query("type")),
	}
	if val, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = val
	}
	if val, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = val
	}

	page, err := h.events.Query(c.UserContext(), filter)
	if err != nil {
		if errors.Is(err, eventlog.ErrInvalidFilter) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("failed to list security logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(page)
}
