package websocket

import (
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/common"
	infraWebsocket "github.com/NeuralTrust/SiteGuard/pkg/infra/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

const (
	pongWait   = 45 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

type securityFeedHandler struct {
	logger *logrus.Logger
	hub    *infraWebsocket.Hub
}

func NewSecurityFeedHandler(logger *logrus.Logger, hub *infraWebsocket.Hub) Handler {
	return &securityFeedHandler{
		logger: logger,
		hub:    hub,
	}
}

// Handle pushes every stored security event to the connected admin until
// either side goes away. Messages from the client are read and discarded.
func (h *securityFeedHandler) Handle(c *websocket.Conn) {
	if semaphore, ok := c.Locals(string(common.FeedSemaphoreKey)).(*infraWebsocket.Semaphore); ok {
		defer semaphore.Release()
	}

	id, messages, cancel := h.hub.Subscribe()
	defer cancel()

	logger := h.logger.WithFields(logrus.Fields{
		"subscriber": id,
		"ip":         c.IP(),
	})
	logger.Info("feed subscriber connected")
	defer logger.Info("feed subscriber disconnected")

	if err := c.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.WithError(err).Error("failed to set read deadline")
		return
	}
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.write(c, websocket.TextMessage, infraWebsocket.Hello()); err != nil {
		logger.WithError(err).Debug("failed to send hello")
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-messages:
			if !ok {
				_ = h.write(c, websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if err := h.write(c, websocket.TextMessage, msg); err != nil {
				logger.WithError(err).Debug("failed to write feed message")
				return
			}
		case <-ticker.C:
			if err := h.write(c, websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *securityFeedHandler) write(c *websocket.Conn, messageType int, data []byte) error {
	if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.WriteMessage(messageType, data)
}
