package http

import (
	"fmt"

	"github.com/NeuralTrust/SiteGuard/pkg/app/blocklist"
	"github.com/NeuralTrust/SiteGuard/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type unblockIPHandler struct {
	logger *logrus.Logger
	blocks blocklist.Service
}

func NewUnblockIPHandler(logger *logrus.Logger, blocks blocklist.Service) Handler {
	return &unblockIPHandler{
		logger: logger,
		blocks: blocks,
	}
}

// Handle @Summary      Unblock a client
// @Description  Unblocking a client that is not blocked succeeds
// @Tags         Security
// @Param        Authorization header string true "Admin bearer token"
// @Param        request body request.UnblockIPRequest true "Client to unblock"
// @Accept       json
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} map[string]interface{}
// @Router       /api/security/unblock-ip [post]
func (h *unblockIPHandler) Handle(c *fiber.Ctx) error {
	var req request.UnblockIPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	removed, err := h.blocks.Unblock(c.UserContext(), req.IP)
	if err != nil {
		h.logger.WithError(err).WithField("ip", req.IP).Error("failed to unblock ip")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
	}
	if !removed {
		h.logger.WithField("ip", req.IP).Debug("unblock requested for a client that was not blocked")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": fmt.Sprintf("IP %s has been unblocked", req.IP)})
}
