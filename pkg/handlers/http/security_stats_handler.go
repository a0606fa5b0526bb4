package http

import (
	"github.com/NeuralTrust/SiteGuard/pkg/app/eventlog"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type securityStatsHandler struct {
	logger *logrus.Logger
	events eventlog.Service
}

func NewSecurityStatsHandler(logger *logrus.Logger, events eventlog.Service) Handler {
	return &securityStatsHandler{
		logger: logger,
		events: events,
	}
}

// Handle @Summary      Security statistics
// @Tags         Security
// @Param        Authorization header string true "Admin bearer token"
// @Produce      json
// @Success      200 {object} security.Stats
// @Router       /api/security/stats [get]
func (h *securityStatsHandler) Handle(c *fiber.Ctx) error {
	stats, err := h.events.Stats(c.UserContext())
	if err != nil {
		h.logger.WithError(err).Error("failed to compute security stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}
