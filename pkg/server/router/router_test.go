package router_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/config"
	handlers "github.com/NeuralTrust/SiteGuard/pkg/handlers/http"
	wsHandlers "github.com/NeuralTrust/SiteGuard/pkg/handlers/websocket"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/auth/jwt"
	infraWebsocket "github.com/NeuralTrust/SiteGuard/pkg/infra/websocket"
	"github.com/NeuralTrust/SiteGuard/pkg/middleware"
	"github.com/NeuralTrust/SiteGuard/pkg/server/router"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFunc func(c *fiber.Ctx) error

func (f handlerFunc) Handle(c *fiber.Ctx) error { return f(c) }

type middlewareFunc fiber.Handler

func (f middlewareFunc) Middleware() fiber.Handler { return fiber.Handler(f) }

type noopFeed struct{}

func (noopFeed) Handle(*websocket.Conn) {}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, string, http.Header) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Header
}

func TestSiteRouter(t *testing.T) {
	inspector := middlewareFunc(func(c *fiber.Ctx) error {
		c.Set("X-Inspected", c.Route().Path+"|"+c.Params("id"))
		return c.Next()
	})
	forward := handlerFunc(func(c *fiber.Ctx) error {
		return c.SendString("forwarded " + c.OriginalURL())
	})
	headers := middleware.NewSecurityHeadersMiddleware(config.HeadersConfig{})

	app := fiber.New()
	r := router.NewSiteRouter(
		middleware.NewTransport(headers),
		inspector,
		handlers.HandlerTransport{
			ForwardedHandler: forward,
			HealthHandler:    handlers.NewHealthHandler("test"),
		},
		[]string{"/api/projects/:id"},
	)
	require.NoError(t, r.BuildRoutes(app))

	status, _, h := send(t, app, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, h.Get("X-Inspected"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))

	status, body, _ := send(t, app, httptest.NewRequest(http.MethodGet, "/__/ping", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "pong", body)

	status, body, h = send(t, app, httptest.NewRequest(http.MethodDelete, "/api/projects/42", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "forwarded /api/projects/42", body)
	assert.Equal(t, "/api/projects/:id|42", h.Get("X-Inspected"))

	status, body, h = send(t, app, httptest.NewRequest(http.MethodGet, "/about?x=1", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "forwarded /about?x=1", body)
	assert.True(t, strings.HasSuffix(h.Get("X-Inspected"), "|"), h.Get("X-Inspected"))
}

func TestSiteRouter_InvalidTransport(t *testing.T) {
	r := router.NewSiteRouter(middleware.NewTransport(), nil, handlers.HandlerTransport{}, nil)
	assert.ErrorIs(t, r.BuildRoutes(fiber.New()), router.ErrInvalidHandlerTransport)
}

func TestAdminRouter(t *testing.T) {
	logger := quietLogger()
	manager := jwt.NewJwtManager(&config.ServerConfig{SecretKey: "router-test"})
	ok := func(name string) handlers.Handler {
		return handlerFunc(func(c *fiber.Ctx) error { return c.SendString(name) })
	}

	app := fiber.New()
	r := router.NewAdminRouter(
		middleware.NewTransport(middleware.NewPanicRecoverMiddleware(logger)),
		middleware.NewAdminAuthMiddleware(logger, manager),
		middleware.NewFeedUpgradeMiddleware(logger, infraWebsocket.NewSemaphore(1)),
		handlers.HandlerTransport{
			ListSecurityLogsHandler: ok("logs"),
			SecurityStatsHandler:    ok("stats"),
			BlockIPHandler:          ok("block"),
			UnblockIPHandler:        ok("unblock"),
			ListBlockedIPsHandler:   ok("blocked"),
			GetVersionHandler:       ok("version"),
		},
		wsHandlers.HandlerTransport{SecurityFeedHandler: noopFeed{}},
	)
	require.NoError(t, r.BuildRoutes(app))

	status, body, _ := send(t, app, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "version", body)

	status, _, _ = send(t, app, httptest.NewRequest(http.MethodGet, "/api/security/logs", nil))
	assert.Equal(t, fiber.StatusUnauthorized, status)

	token, err := manager.CreateToken(jwt.Subject{ID: "1", Email: "admin@example.com", Role: jwt.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	routes := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/security/logs", "logs"},
		{http.MethodGet, "/api/security/stats", "stats"},
		{http.MethodPost, "/api/security/block-ip", "block"},
		{http.MethodPost, "/api/security/unblock-ip", "unblock"},
		{http.MethodGet, "/api/security/blocked-ips", "blocked"},
	}
	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		status, body, _ := send(t, app, req)
		assert.Equal(t, fiber.StatusOK, status, rt.path)
		assert.Equal(t, rt.want, body, rt.path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/security/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, _, _ = send(t, app, req)
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}
