package middleware

import (
	"github.com/NeuralTrust/SiteGuard/pkg/common"
	infra "github.com/NeuralTrust/SiteGuard/pkg/infra/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// feedUpgradeMiddleware admits websocket upgrades for the live event feed
// while a connection slot is free. The feed handler releases the slot.
type feedUpgradeMiddleware struct {
	logger    *logrus.Logger
	semaphore *infra.Semaphore
}

func NewFeedUpgradeMiddleware(logger *logrus.Logger, semaphore *infra.Semaphore) Middleware {
	return &feedUpgradeMiddleware{
		logger:    logger,
		semaphore: semaphore,
	}
}

func (m *feedUpgradeMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if !m.semaphore.Acquire() {
			m.logger.WithField("connections", m.semaphore.GetCurrentConnections()).
				Warn("maximum feed connections reached, rejecting connection")
			return fiber.ErrTooManyRequests
		}
		c.Locals(string(common.FeedSemaphoreKey), m.semaphore)
		if err := c.Next(); err != nil {
			m.semaphore.Release()
			return err
		}
		return nil
	}
}
