package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/common"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

var (
	ErrInvalidUpstreamURL = errors.New("invalid upstream url")
	errUpstreamStatus     = errors.New("upstream returned a server error")
)

var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Doer is satisfied by *fasthttp.Client.
type Doer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

type forwardedHandler struct {
	logger  *logrus.Logger
	client  Doer
	breaker httpx.CircuitBreaker
	base    *url.URL
	timeout time.Duration
}

func NewForwardedHandler(
	logger *logrus.Logger,
	client Doer,
	breaker httpx.CircuitBreaker,
	upstreamURL string,
	timeout time.Duration,
) (Handler, error) {
	base, err := url.Parse(upstreamURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUpstreamURL, upstreamURL)
	}
	base.Path = strings.TrimRight(base.Path, "/")
	return &forwardedHandler{
		logger:  logger,
		client:  client,
		breaker: breaker,
		base:    base,
		timeout: timeout,
	}, nil
}

func (h *forwardedHandler) Handle(c *fiber.Ctx) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	h.buildRequest(c, req)

	start := time.Now()
	err := h.breaker.Execute(func() error {
		if err := h.client.DoTimeout(req, resp, h.timeout); err != nil {
			return err
		}
		if resp.StatusCode() >= fiber.StatusInternalServerError {
			return errUpstreamStatus
		}
		return nil
	})
	if err != nil && !errors.Is(err, errUpstreamStatus) {
		fields := logrus.Fields{
			"method":   c.Method(),
			"path":     c.Path(),
			"upstream": h.base.Host,
		}
		if httpx.IsOpen(err) {
			h.logger.WithFields(fields).Warn("upstream circuit is open")
		} else {
			h.logger.WithFields(fields).WithError(err).Error("failed to reach upstream")
		}
		h.observe(c.Method(), fiber.StatusBadGateway, start)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream unavailable"})
	}
	h.observe(c.Method(), resp.StatusCode(), start)

	resp.Header.VisitAll(func(key, value []byte) {
		if isHopByHop(string(key)) {
			return
		}
		c.Response().Header.SetBytesKV(key, value)
	})
	c.Status(resp.StatusCode())
	return c.Send(resp.Body())
}

func (h *forwardedHandler) buildRequest(c *fiber.Ctx, req *fasthttp.Request) {
	req.Header.SetMethod(c.Method())
	req.SetRequestURI(h.base.Scheme + "://" + h.base.Host + h.base.Path + c.OriginalURL())

	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		if strings.EqualFold(k, fiber.HeaderHost) || isHopByHop(k) {
			return
		}
		req.Header.SetBytesKV(key, value)
	})
	req.Header.SetHost(h.base.Host)

	ip := c.IP()
	if prior := c.Get(fiber.HeaderXForwardedFor); prior != "" {
		ip = prior + ", " + ip
	}
	req.Header.Set(fiber.HeaderXForwardedFor, ip)
	req.Header.Set(fiber.HeaderXForwardedHost, c.Hostname())
	req.Header.Set(fiber.HeaderXForwardedProto, c.Protocol())
	if traceID, ok := c.Locals(common.TraceIdKey).(string); ok && traceID != "" {
		req.Header.Set(common.TraceIDHeader, traceID)
	}

	req.SetBody(c.Request().Body())
}

func (h *forwardedHandler) observe(method string, status int, start time.Time) {
	if !prometheus.Config.EnableLatency {
		return
	}
	prometheus.UpstreamLatency.
		WithLabelValues(method, strconv.Itoa(status)).
		Observe(float64(time.Since(start).Milliseconds()))
}

func isHopByHop(header string) bool {
	for _, h := range hopByHopHeaders {
		if strings.EqualFold(h, header) {
			return true
		}
	}
	return false
}
