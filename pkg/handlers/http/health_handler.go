package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type healthHandler struct {
	environment string
	now         func() time.Time
}

func NewHealthHandler(environment string) Handler {
	if environment == "" {
		environment = "development"
	}
	return &healthHandler{environment: environment, now: time.Now}
}

// Handle @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/health [get]
func (h *healthHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":      "ok",
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"environment": h.environment,
	})
}
