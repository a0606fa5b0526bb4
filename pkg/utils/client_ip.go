package utils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const UnknownClient = "unknown"

// ResolveClientIP prefers the first X-Forwarded-For entry, then X-Real-IP,
// then the connection address.
func ResolveClientIP(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := c.Context().RemoteIP(); ip != nil {
		if s := ip.String(); s != "" && s != "<nil>" {
			return s
		}
	}
	return UnknownClient
}
