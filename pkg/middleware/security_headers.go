package middleware

import (
	"github.com/NeuralTrust/SiteGuard/pkg/config"
	"github.com/gofiber/fiber/v2"
)

const DefaultContentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline' 'unsafe-eval'; style-src 'self' 'unsafe-inline';"

type securityHeadersMiddleware struct {
	disabled bool
	headers  [][2]string
}

func NewSecurityHeadersMiddleware(cfg config.HeadersConfig) Middleware {
	csp := cfg.ContentSecurityPolicy
	if csp == "" {
		csp = DefaultContentSecurityPolicy
	}
	return &securityHeadersMiddleware{
		disabled: cfg.Disabled,
		headers: [][2]string{
			{"X-Content-Type-Options", "nosniff"},
			{"X-Frame-Options", "DENY"},
			{"X-XSS-Protection", "1; mode=block"},
			{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
			{"Content-Security-Policy", csp},
			{"Referrer-Policy", "strict-origin-when-cross-origin"},
			{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
		},
	}
}

func (m *securityHeadersMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.disabled {
			for _, h := range m.headers {
				c.Set(h[0], h[1])
			}
		}
		return c.Next()
	}
}
