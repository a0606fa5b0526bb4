package middleware

import (
	"strings"

	"github.com/NeuralTrust/SiteGuard/pkg/common"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/auth/jwt"
	"github.com/NeuralTrust/SiteGuard/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// identityMiddleware resolves who is calling: a trace id, the client
// identifier and, when a valid site token is present, its subject. A bad
// token is not an error here.
type identityMiddleware struct {
	logger     *logrus.Logger
	jwtManager jwt.Manager
}

func NewIdentityMiddleware(logger *logrus.Logger, jwtManager jwt.Manager) Middleware {
	return &identityMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
	}
}

func (m *identityMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := strings.Clone(c.Get(common.TraceIDHeader))
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Locals(common.TraceIdKey, traceID)
		c.Set(common.TraceIDHeader, traceID)

		c.Locals(common.ClientIPKey, utils.ResolveClientIP(c))

		if token := bearerToken(c); token != "" && m.jwtManager != nil {
			claims, err := m.jwtManager.DecodeToken(token)
			if err != nil {
				m.logger.WithError(err).Debug("ignoring unusable bearer token")
			} else {
				c.Locals(common.SubjectKey, claims)
			}
		}
		return c.Next()
	}
}

func clientIP(c *fiber.Ctx) string {
	if ip, ok := c.Locals(common.ClientIPKey).(string); ok && ip != "" {
		return ip
	}
	return utils.ResolveClientIP(c)
}

func subject(c *fiber.Ctx) *jwt.Claims {
	claims, _ := c.Locals(common.SubjectKey).(*jwt.Claims)
	return claims
}
