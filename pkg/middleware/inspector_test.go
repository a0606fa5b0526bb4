package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/app/blocklist"
	"github.com/NeuralTrust/SiteGuard/pkg/app/detection"
	"github.com/NeuralTrust/SiteGuard/pkg/app/eventlog"
	"github.com/NeuralTrust/SiteGuard/pkg/app/ratelimit"
	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/auth/jwt"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/repository"
	"github.com/NeuralTrust/SiteGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipeline struct {
	app    *fiber.App
	events eventlog.Service
	blocks blocklist.Service
	jwt    jwt.Manager
	hits   int
}

type failingLimiter struct{}

func (failingLimiter) Admit(context.Context, string, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func (failingLimiter) Policy() ratelimit.Policy { return ratelimit.Policy{} }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newPipeline(t *testing.T, max int, mode string, limiter ratelimit.Limiter) *pipeline {
	t.Helper()
	logger := quietLogger()
	events := eventlog.NewService(logger, repository.NewMemoryEventRepository(1000), nil, nil)
	blocks := blocklist.NewService(logger, repository.NewMemoryBlockRepository(), events, nil)
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(logger, ratelimit.Policy{Window: time.Minute, MaxRequests: max}, nil)
	}
	jwtManager := jwt.NewJwtManager(&testServerConfig)

	p := &pipeline{events: events, blocks: blocks, jwt: jwtManager}
	inspector := middleware.NewInspectorMiddleware(
		logger,
		detection.NewDetector(logger, nil),
		limiter,
		blocks,
		events,
		middleware.InspectorOptions{
			AuthPaths:    []string{"/api/auth/login", "/api/auth/register"},
			MaxBodyBytes: 1 << 20,
			BodyMode:     mode,
		},
	).Middleware()

	app := fiber.New()
	app.Use(middleware.NewIdentityMiddleware(logger, jwtManager).Middleware())
	handler := func(c *fiber.Ctx) error {
		p.hits++
		switch c.Query("status") {
		case "404":
			return c.Status(fiber.StatusNotFound).SendString("no such project")
		case "500":
			return c.Status(fiber.StatusInternalServerError).SendString("database exploded")
		}
		return c.SendString("ok")
	}
	app.All("/api/projects/:id", inspector, handler)
	app.Use(inspector, handler)
	p.app = app
	return p
}

func (p *pipeline) do(t *testing.T, method, target, body string, headers map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("X-Forwarded-For", "198.51.100.10")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := p.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (p *pipeline) logs(t *testing.T) []*security.Event {
	t.Helper()
	page, err := p.events.Query(context.Background(), security.Filter{})
	require.NoError(t, err)
	return page.Events
}

func decodeBody(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestInspector_CleanGetPassesWithoutEvent(t *testing.T) {
	p := newPipeline(t, 100, middleware.BodyModeRaw, nil)

	resp := p.do(t, http.MethodGet, "/api/projects", "", nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, p.hits)
	assert.Empty(t, p.logs(t))
}

func TestInspector_MutatingRequestIsLogged(t *testing.T) {
	p := newPipeline(t, 100, middleware.BodyModeRaw, nil)

	resp := p.do(t, http.MethodPost, "/api/contact", `{"name":"Ada","message":"Hello there"}`, nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	logs := p.logs(t)
	require.Len(t, logs, 1)
	evt := logs[0]
	assert.Equal(t, security.OutcomeLogged, evt.Type)
	assert.Equal(t, security.SeverityLow, evt.Severity)
	assert.Equal(t, "198.51.100.10", evt.IP)
	assert.Equal(t, "/api/contact", evt.Path)
	assert.JSONEq(t, `{"name":"Ada","message":"Hello there"}`, string(evt.RequestBody))
	assert.Empty(t, evt.Detections)
}

func TestInspector_StoredEventsKeepTheirTraceIDs(t *testing.T) {
	p := newPipeline(t, 100, middleware.BodyModeRaw, nil)

	want := make(map[string]bool)
	for i := 0; i < 20; i++ {
		traceID := fmt.Sprintf("trace-%04d-aaaaaaaa", i)
		want[traceID] = true
		resp := p.do(t, http.MethodPost, "/api/contact", `{"name":"Ada"}`, map[string]string{
			"X-Trace-Id": traceID,
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, traceID, resp.Header.Get("X-Trace-Id"))
	}

	got := make(map[string]bool)
	for _, evt := range p.logs(t) {
		got[evt.TraceID] = true
	}
	assert.Equal(t, want, got)
}

func TestInspector_AttackBodyIsBlocked(t *testing.T) {
	p := newPipeline(t, 100, middleware.BodyModeRaw, nil)

	resp := p.do(t, http.MethodPost, "/api/contact", `{"name":"x'; DROP TABLE users; --"}`, nil)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Suspicious activity detected. Request blocked.", body["error"])
	assert.Equal(t, "Your request contains potentially malicious content.", body["details"])
	assert.Zero(t, p.hits)

	logs := p.logs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, security.OutcomeAttackBlocked, logs[0].Type)
	assert.Equal(t, security.SeverityHigh, logs[0].Severity)
	assert.NotEmpty(t, logs[0].Detections)
}

func TestInspector_QueryRouteParamsAndPathAreScanned(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		severity security.Severity
	}{
		{"query", "/api/projects?search=%3Cscript%3Ealert(1)%3C%2Fscript%3E", security.SeverityHigh},
		{"route param", "/api/projects/..%2f..%2fetc", security.SeverityMedium},
		{"path", "/static/../../etc/passwd", security.SeverityMedium},
		{"nosql query key", "/api/projects?user[$ne]=admin", security.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, 100, middleware.BodyModeRaw, nil)

			resp := p.do(t, http.MethodGet, tt.target, "", nil)

			assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
			logs := p.logs(t)
			require.Len(t, logs, 1)
			assert.Equal(t, tt.severity, logs[0].Severity)
			assert.Nil(t, logs[0].RequestBody)
		})
	}
}

func TestInspector_AuthPathsBypassDetection(t *testing.T) {
	p := newPipeline(t, 100, middleware.BodyModeRaw, nil)

	resp := p.do(t, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"p@ss'word"}`, nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, p.hits)
	assert.Empty(t, p.logs(t))
}

func TestInspector_RateLimit(t *testing.T) {
	p := newPipeline(t, 2, middleware.BodyModeRaw, nil)

	for i := 0; i < 2; i++ {
		assert.Equal(t, fiber.StatusOK, p.do(t, http.MethodGet, "/api/projects", "", nil).StatusCode)
	}
	resp := p.do(t, http.MethodGet, "/api/projects", "", nil)

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many requests. Please try again later.", decodeBody(t, resp)["error"])
	assert.Equal(t, 2, p.hits)

	logs := p.logs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, security.OutcomeRateLimited, logs[0].Type)
	assert.Equal(t, security.SeverityMedium, logs[0].Severity)
	assert.Equal(t, "Exceeded 2 requests in 60000ms", logs[0].Details)

	// windows are per route
	assert.Equal(t, fiber.StatusOK, p.do(t, http.MethodGet, "/api/services", "", nil).StatusCode)
}

func TestInspector_LimiterFaultFailsOpen(t *testing.T) {
	p := newPipeline(t, 0, middleware.BodyModeRaw, failingLimiter{})

	resp := p.do(t, http.MethodGet, "/api/projects", "", nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, p.logs(t))
}

func TestInspector_BlockedClientIsRejectedBeforeRateLimit(t *testing.T) {
	p := newPipeline(t, 1, middleware.BodyModeRaw, nil)
	require.NoError(t, p.blocks.Block(context.Background(), "198.51.100.10", "scanner"))

	for i := 0; i < 3; i++ {
		resp := p.do(t, http.MethodGet, "/api/projects", "", nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Access denied. Your IP has been blocked.", decodeBody(t, resp)["error"])
	}
	assert.Zero(t, p.hits)

	logs := p.logs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, security.OutcomeIPBlocked, logs[0].Type)
	assert.Equal(t, "scanner", logs[0].Details)

	// other clients are unaffected
	resp := p.do(t, http.MethodGet, "/api/projects", "", map[string]string{"X-Forwarded-For": "203.0.113.9"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestInspector_ErrorResponsesAreTracked(t *testing.T) {
	p := newPipeline(t, 100, middleware.BodyModeRaw, nil)

	assert.Equal(t, fiber.StatusNotFound, p.do(t, http.MethodGet, "/api/projects?status=404", "", nil).StatusCode)
	assert.Equal(t, fiber.StatusInternalServerError, p.do(t, http.MethodGet, "/api/projects?status=500", "", nil).StatusCode)

	logs := p.logs(t)
	require.Len(t, logs, 2)
	assert.Equal(t, security.OutcomeErrorResponse, logs[0].Type)
	assert.Equal(t, security.SeverityHigh, logs[0].Severity)
	assert.Equal(t, 500, logs[0].StatusCode)
	assert.Equal(t, "database exploded", logs[0].Response)
	assert.Equal(t, security.SeverityMedium, logs[1].Severity)
	assert.Equal(t, 404, logs[1].StatusCode)
}

func TestInspector_SubjectIsRecorded(t *testing.T) {
	p := newPipeline(t, 100, middleware.BodyModeRaw, nil)
	token, err := p.jwt.CreateToken(jwt.Subject{ID: "u-42", Email: "ada@example.com", Role: "user"}, time.Hour)
	require.NoError(t, err)

	p.do(t, http.MethodDelete, "/api/projects/7", "", map[string]string{"Authorization": "Bearer " + token})

	logs := p.logs(t)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, "u-42", *logs[0].UserID)
	assert.Equal(t, "ada@example.com", *logs[0].UserEmail)
	assert.NotEmpty(t, logs[0].TraceID)
}

func TestInspector_BodyModes(t *testing.T) {
	body := `{"email":"ada@example.com","password":"hunter2","profile":{"token":"abc"}}`

	redacted := newPipeline(t, 100, middleware.BodyModeRedact, nil)
	redacted.do(t, http.MethodPost, "/api/profile", body, nil)
	logs := redacted.logs(t)
	require.Len(t, logs, 1)
	assert.JSONEq(t, `{"email":"ada@example.com","password":"[REDACTED]","profile":{"token":"[REDACTED]"}}`, string(logs[0].RequestBody))

	omitted := newPipeline(t, 100, middleware.BodyModeOmit, nil)
	omitted.do(t, http.MethodPost, "/api/profile", body, nil)
	logs = omitted.logs(t)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].RequestBody)
}
