package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Site
	ForwardedHandler Handler
	HealthHandler    Handler

	// Security admin
	ListSecurityLogsHandler Handler
	SecurityStatsHandler    Handler
	BlockIPHandler          Handler
	UnblockIPHandler        Handler
	ListBlockedIPsHandler   Handler
	GetVersionHandler       Handler
}
