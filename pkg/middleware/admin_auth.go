package middleware

import (
	"errors"
	"strings"

	"github.com/NeuralTrust/SiteGuard/pkg/common"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/auth/jwt"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	tokenQueryParam     = "token"
)

type adminAuthMiddleware struct {
	logger     *logrus.Logger
	jwtManager jwt.Manager
}

func NewAdminAuthMiddleware(
	logger *logrus.Logger,
	jwtManager jwt.Manager,
) Middleware {
	return &adminAuthMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
	}
}

func (m *adminAuthMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := bearerToken(ctx)
		// browsers cannot set headers on a websocket handshake
		if token == "" && websocket.IsWebSocketUpgrade(ctx) {
			token = ctx.Query(tokenQueryParam)
		}
		if token == "" {
			m.logger.WithField("path", ctx.Path()).Debug("admin request without token")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Access token required"})
		}

		claims, err := m.jwtManager.DecodeToken(token)
		if err != nil {
			entry := m.logger.WithError(err).WithField("path", ctx.Path())
			if errors.Is(err, jwt.ErrExpiredToken) {
				entry.Debug("expired admin token")
			} else {
				entry.Warn("invalid admin token")
			}
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid or expired token"})
		}
		if !claims.IsAdmin() {
			m.logger.WithFields(logrus.Fields{
				"user_id": claims.UserID,
				"path":    ctx.Path(),
			}).Warn("non admin token on admin route")
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
		}

		ctx.Locals(common.SubjectKey, claims)
		return ctx.Next()
	}
}

func bearerToken(ctx *fiber.Ctx) string {
	header := ctx.Get(authorizationHeader)
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}
