package http

import (
	"github.com/NeuralTrust/SiteGuard/pkg/app/blocklist"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listBlockedIPsHandler struct {
	logger *logrus.Logger
	blocks blocklist.Service
}

func NewListBlockedIPsHandler(logger *logrus.Logger, blocks blocklist.Service) Handler {
	return &listBlockedIPsHandler{
		logger: logger,
		blocks: blocks,
	}
}

// Handle @Summary      List blocked clients
// @Tags         Security
// @Param        Authorization header string true "Admin bearer token"
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /api/security/blocked-ips [get]
func (h *listBlockedIPsHandler) Handle(c *fiber.Ctx) error {
	entries, err := h.blocks.List(c.UserContext())
	if err != nil {
		h.logger.WithError(err).Error("failed to list blocked ips")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"blocked": entries,
		"count":   len(entries),
	})
}
