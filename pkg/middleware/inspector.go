package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/NeuralTrust/SiteGuard/pkg/app/blocklist"
	"github.com/NeuralTrust/SiteGuard/pkg/app/detection"
	"github.com/NeuralTrust/SiteGuard/pkg/app/eventlog"
	"github.com/NeuralTrust/SiteGuard/pkg/app/ratelimit"
	"github.com/NeuralTrust/SiteGuard/pkg/common"
	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/SiteGuard/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	responseSnippetBytes = 200
	responseDecodeLimit  = 64 * 1024

	reasonBlocked     = "blocked"
	reasonRateLimited = "rate_limited"
	reasonAttack      = "attack"
)

var (
	blockedResponse = fiber.Map{"error": "Access denied. Your IP has been blocked."}
	limitedResponse = fiber.Map{"error": "Too many requests. Please try again later."}
	attackResponse  = fiber.Map{
		"error":   "Suspicious activity detected. Request blocked.",
		"details": "Your request contains potentially malicious content.",
	}
)

type InspectorOptions struct {
	// AuthPaths skip signature detection. Credentials legitimately contain
	// characters the signatures look for.
	AuthPaths    []string
	MaxBodyBytes int
	BodyMode     string
	RedactFields []string
	TimeProvider func() time.Time
}

type inspectorMiddleware struct {
	logger    *logrus.Logger
	detector  detection.Detector
	limiter   ratelimit.Limiter
	blocks    blocklist.Service
	events    eventlog.Service
	authPaths map[string]struct{}
	maxBody   int
	echo      bodyEcho
	now       func() time.Time
}

func NewInspectorMiddleware(
	logger *logrus.Logger,
	detector detection.Detector,
	limiter ratelimit.Limiter,
	blocks blocklist.Service,
	events eventlog.Service,
	opts InspectorOptions,
) Middleware {
	authPaths := make(map[string]struct{}, len(opts.AuthPaths))
	for _, p := range opts.AuthPaths {
		authPaths[p] = struct{}{}
	}
	now := opts.TimeProvider
	if now == nil {
		now = time.Now
	}
	return &inspectorMiddleware{
		logger:    logger,
		detector:  detector,
		limiter:   limiter,
		blocks:    blocks,
		events:    events,
		authPaths: authPaths,
		maxBody:   opts.MaxBodyBytes,
		echo:      newBodyEcho(opts.BodyMode, opts.RedactFields),
		now:       now,
	}
}

func (m *inspectorMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		ctx := c.UserContext()
		client := clientIP(c)
		route := c.Path()

		if m.blocks.IsBlocked(ctx, client) {
			m.reject(start, reasonBlocked)
			m.logger.WithFields(logrus.Fields{"ip": client, "path": route}).Warn("request from blocked client")
			return c.Status(fiber.StatusForbidden).JSON(blockedResponse)
		}

		if !m.admit(ctx, c, client, route) {
			m.reject(start, reasonRateLimited)
			return c.Status(fiber.StatusTooManyRequests).JSON(limitedResponse)
		}

		if _, bypass := m.authPaths[route]; !bypass {
			if stop, err := m.inspect(ctx, c, client, start); stop {
				return err
			}
		}
		m.observe(start)

		err := c.Next()
		m.trackResponse(ctx, c, client, err)
		return err
	}
}

func (m *inspectorMiddleware) admit(ctx context.Context, c *fiber.Ctx, client, route string) bool {
	decision, err := m.limiter.Admit(ctx, client, route)
	if err != nil {
		m.logger.WithError(err).WithField("ip", client).Error("rate limiter unavailable, admitting request")
		return true
	}
	if decision.Allowed {
		return true
	}

	policy := m.limiter.Policy()
	evt := m.newEvent(c, security.OutcomeRateLimited, security.SeverityMedium, client)
	evt.Details = policy.Details()
	m.events.Append(ctx, evt)

	m.logger.WithFields(logrus.Fields{
		"ip":    client,
		"path":  route,
		"count": decision.Count,
	}).Warn("rate limit exceeded")
	return false
}

// inspect runs detection and records the decision. stop is true when the
// response has already been written.
func (m *inspectorMiddleware) inspect(ctx context.Context, c *fiber.Ctx, client string, start time.Time) (bool, error) {
	body := m.requestBody(c)
	hits := m.detect(c, body)
	method := c.Method()

	if len(hits) == 0 && !mutating(method) {
		return false, nil
	}

	outcome := security.OutcomeLogged
	severity := security.SeverityLow
	if len(hits) > 0 {
		outcome = security.OutcomeAttackBlocked
		severity = security.ClassifySeverity(hits)
	}

	evt := m.newEvent(c, outcome, severity, client)
	evt.Detections = hits
	if method != fiber.MethodGet {
		evt.RequestBody = m.echo.payload(body, isForm(c))
	}
	m.events.Append(ctx, evt)

	if len(hits) == 0 {
		m.logger.WithFields(logrus.Fields{"ip": client, "method": method, "path": evt.Path}).Debug("mutating request logged")
		return false, nil
	}

	m.reject(start, reasonAttack)
	m.logger.WithFields(logrus.Fields{
		"ip":         client,
		"path":       evt.Path,
		"severity":   severity,
		"categories": categories(hits),
		"event_id":   evt.ID,
	}).Warn("attack detected, request blocked")
	return true, c.Status(fiber.StatusForbidden).JSON(attackResponse)
}

func (m *inspectorMiddleware) requestBody(c *fiber.Ctx) []byte {
	body, err := httpx.DecodeRequestBody(c.Request(), m.maxBody)
	if err == nil {
		return body
	}
	m.logger.WithError(err).WithField("path", c.Path()).Warn("could not decode request body, scanning it as received")
	raw := c.Body()
	if m.maxBody > 0 && len(raw) > m.maxBody {
		raw = raw[:m.maxBody]
	}
	return raw
}

func (m *inspectorMiddleware) detect(c *fiber.Ctx, body []byte) []security.DetectionHit {
	var hits []security.DetectionHit

	if len(body) > 0 {
		var value interface{} = body
		if isForm(c) {
			if form := formValues(body); form != nil {
				value = form
			}
		}
		hits = append(hits, m.detector.Scan(value, "body")...)
	}

	query := make(map[string][]string)
	c.Request().URI().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		query[key] = append(query[key], string(v))
	})
	if len(query) > 0 {
		hits = append(hits, m.detector.Scan(query, "query")...)
	}

	if params := c.AllParams(); len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]string, 0, len(keys))
		for _, k := range keys {
			values = append(values, params[k])
		}
		hits = append(hits, m.detector.Scan(values, "params")...)
	}

	return append(hits, m.detector.Scan(c.Path(), "path")...)
}

// trackResponse records failed responses produced downstream of the
// inspector.
func (m *inspectorMiddleware) trackResponse(ctx context.Context, c *fiber.Ctx, client string, err error) {
	status := c.Response().StatusCode()
	snippet := m.responseSnippet(c)
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			snippet = fe.Message
		} else {
			status = fiber.StatusInternalServerError
			snippet = ""
		}
	}
	if status < http.StatusBadRequest {
		return
	}

	evt := m.newEvent(c, security.OutcomeErrorResponse, security.ErrorSeverity(status), client)
	evt.StatusCode = status
	evt.Response = truncate(snippet, responseSnippetBytes)
	m.events.Append(ctx, evt)
}

func (m *inspectorMiddleware) responseSnippet(c *fiber.Ctx) string {
	resp := c.Response()
	body, _, err := httpx.DecodeChain(string(resp.Header.Peek(fiber.HeaderContentEncoding)), resp.Body(), responseDecodeLimit)
	if err != nil {
		return ""
	}
	return string(body)
}

func (m *inspectorMiddleware) newEvent(c *fiber.Ctx, outcome security.Outcome, severity security.Severity, client string) *security.Event {
	evt := security.NewEvent(outcome, severity, m.now())
	userAgent := strings.Clone(c.Get(fiber.HeaderUserAgent))
	evt.Method = strings.Clone(c.Method())
	evt.Path = strings.Clone(c.Path())
	evt.IP = strings.Clone(client)
	evt.UserAgent = userAgent
	evt.Client = utils.ParseUserAgent(userAgent, strings.Clone(c.Get(fiber.HeaderAcceptLanguage)))
	if claims := subject(c); claims != nil {
		if claims.UserID != "" {
			id := claims.UserID
			evt.UserID = &id
		}
		if claims.UserEmail != "" {
			email := claims.UserEmail
			evt.UserEmail = &email
		}
	}
	if traceID, ok := c.Locals(common.TraceIdKey).(string); ok {
		evt.TraceID = traceID
	}
	return evt
}

func (m *inspectorMiddleware) reject(start time.Time, reason string) {
	prometheus.RejectionsTotal.WithLabelValues(reason).Inc()
	m.observe(start)
}

func (m *inspectorMiddleware) observe(start time.Time) {
	if prometheus.Config.EnableLatency {
		prometheus.InspectionLatency.Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}

func mutating(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}

func isForm(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationForm)
}

func formValues(body []byte) map[string][]string {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil
	}
	return values
}

func categories(hits []security.DetectionHit) []string {
	seen := make(map[security.Category]struct{}, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.Category]; ok {
			continue
		}
		seen[h.Category] = struct{}{}
		out = append(out, string(h.Category))
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) && len(s) > 0 {
		s = s[:len(s)-1]
	}
	return s
}
