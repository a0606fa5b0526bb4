package router

import (
	"time"

	handlers "github.com/NeuralTrust/SiteGuard/pkg/handlers/http"
	wsHandlers "github.com/NeuralTrust/SiteGuard/pkg/handlers/websocket"
	"github.com/NeuralTrust/SiteGuard/pkg/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

const FeedPath = "/feed"

type adminRouter struct {
	middlewareTransport *middleware.Transport
	adminAuth           middleware.Middleware
	feedUpgrade         middleware.Middleware
	handlerTransport    handlers.HandlerTransport
	wsHandlerTransport  wsHandlers.HandlerTransport
}

func NewAdminRouter(
	middlewareTransport *middleware.Transport,
	adminAuth middleware.Middleware,
	feedUpgrade middleware.Middleware,
	handlerTransport handlers.HandlerTransport,
	wsHandlerTransport wsHandlers.HandlerTransport,
) ServerRouter {
	return &adminRouter{
		middlewareTransport: middlewareTransport,
		adminAuth:           adminAuth,
		feedUpgrade:         feedUpgrade,
		handlerTransport:    handlerTransport,
		wsHandlerTransport:  wsHandlerTransport,
	}
}

func (r *adminRouter) BuildRoutes(router *fiber.App) error {
	ht := r.handlerTransport
	if ht.ListSecurityLogsHandler == nil || ht.SecurityStatsHandler == nil ||
		ht.BlockIPHandler == nil || ht.UnblockIPHandler == nil ||
		ht.ListBlockedIPsHandler == nil || ht.GetVersionHandler == nil ||
		r.wsHandlerTransport.SecurityFeedHandler == nil {
		return ErrInvalidHandlerTransport
	}

	if mws := r.middlewareTransport.GetMiddlewares(); len(mws) > 0 {
		router.Use(mws...)
	}

	router.Static("/swagger.json", "./docs/swagger.json")
	router.Get("/docs/*", swagger.New(swagger.Config{
		URL: "/swagger.json",
	}))

	router.Get("/version", ht.GetVersionHandler.Handle)
	if ht.HealthHandler != nil {
		router.Get(HealthPath, ht.HealthHandler.Handle)
	}

	sec := router.Group("/api/security", r.adminAuth.Middleware())
	{
		sec.Get("/logs", ht.ListSecurityLogsHandler.Handle)
		sec.Get("/stats", ht.SecurityStatsHandler.Handle)
		sec.Post("/block-ip", ht.BlockIPHandler.Handle)
		sec.Post("/unblock-ip", ht.UnblockIPHandler.Handle)
		sec.Get("/blocked-ips", ht.ListBlockedIPsHandler.Handle)
		sec.Get(FeedPath, r.feedUpgrade.Middleware(), websocket.New(
			r.wsHandlerTransport.SecurityFeedHandler.Handle,
			websocket.Config{
				HandshakeTimeout: 15 * time.Second,
				ReadBufferSize:   1024,
				WriteBufferSize:  1024,
			},
		))
	}
	return nil
}
