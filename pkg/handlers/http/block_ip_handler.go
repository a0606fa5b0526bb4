package http

import (
	"fmt"

	"github.com/NeuralTrust/SiteGuard/pkg/app/blocklist"
	"github.com/NeuralTrust/SiteGuard/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type blockIPHandler struct {
	logger *logrus.Logger
	blocks blocklist.Service
}

func NewBlockIPHandler(logger *logrus.Logger, blocks blocklist.Service) Handler {
	return &blockIPHandler{
		logger: logger,
		blocks: blocks,
	}
}

// Handle @Summary      Block a client
// @Tags         Security
// @Param        Authorization header string true "Admin bearer token"
// @Param        request body request.BlockIPRequest true "Client to block"
// @Accept       json
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} map[string]interface{}
// @Router       /api/security/block-ip [post]
func (h *blockIPHandler) Handle(c *fiber.Ctx) error {
	var req request.BlockIPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.blocks.Block(c.UserContext(), req.IP, req.Reason); err != nil {
		h.logger.WithError(err).WithField("ip", req.IP).Error("failed to block ip")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": fmt.Sprintf("IP %s has been blocked", req.IP)})
}
