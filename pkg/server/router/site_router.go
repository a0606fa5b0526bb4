package router

import (
	"fmt"
	"strings"

	handlers "github.com/NeuralTrust/SiteGuard/pkg/handlers/http"
	"github.com/NeuralTrust/SiteGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

const (
	HealthPath    = "/health"
	APIHealthPath = "/api/health"
	PingPath      = "/__/ping"
)

type siteRouter struct {
	middlewareTransport *middleware.Transport
	inspector           middleware.Middleware
	handlerTransport    handlers.HandlerTransport
	routes              []string
}

// NewSiteRouter wires the protected site. Requests matching one of routes
// are inspected with their route parameters, everything else falls through
// to the catch-all.
func NewSiteRouter(
	middlewareTransport *middleware.Transport,
	inspector middleware.Middleware,
	handlerTransport handlers.HandlerTransport,
	routes []string,
) ServerRouter {
	return &siteRouter{
		middlewareTransport: middlewareTransport,
		inspector:           inspector,
		handlerTransport:    handlerTransport,
		routes:              routes,
	}
}

func (r *siteRouter) BuildRoutes(router *fiber.App) error {
	if r.handlerTransport.ForwardedHandler == nil || r.handlerTransport.HealthHandler == nil || r.inspector == nil {
		return ErrInvalidHandlerTransport
	}

	if mws := r.middlewareTransport.GetMiddlewares(); len(mws) > 0 {
		router.Use(mws...)
	}

	router.Get(HealthPath, r.handlerTransport.HealthHandler.Handle)
	router.Get(APIHealthPath, r.handlerTransport.HealthHandler.Handle)
	router.Get(PingPath, func(ctx *fiber.Ctx) error {
		return ctx.SendString("pong")
	})

	inspect := r.inspector.Middleware()
	forward := r.handlerTransport.ForwardedHandler.Handle
	for _, pattern := range r.routes {
		pattern = strings.TrimSpace(pattern)
		if !strings.HasPrefix(pattern, "/") {
			return fmt.Errorf("invalid route pattern %q", pattern)
		}
		router.All(pattern, inspect, forward)
	}
	router.Use(inspect, forward)

	return nil
}
