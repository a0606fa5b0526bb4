package websocket_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"testing"
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	wsHandlers "github.com/NeuralTrust/SiteGuard/pkg/handlers/websocket"
	infraWebsocket "github.com/NeuralTrust/SiteGuard/pkg/infra/websocket"
	"github.com/NeuralTrust/SiteGuard/pkg/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gorilla "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFeed(t *testing.T, hub *infraWebsocket.Hub, semaphore *infraWebsocket.Semaphore) string {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/api/security/feed",
		middleware.NewFeedUpgradeMiddleware(logger, semaphore).Middleware(),
		websocket.New(wsHandlers.NewSecurityFeedHandler(logger, hub).Handle),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "ws://" + ln.Addr().String() + "/api/security/feed"
}

func readMessage(t *testing.T, conn *gorilla.Conn) infraWebsocket.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg infraWebsocket.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestSecurityFeedHandler_PushesEvents(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hub := infraWebsocket.NewHub(logger)
	semaphore := infraWebsocket.NewSemaphore(2)
	url := startFeed(t, hub, semaphore)

	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	hello := readMessage(t, conn)
	assert.Equal(t, infraWebsocket.MessageTypeHello, hello.Type)
	assert.Equal(t, 1, hub.Subscribers())
	assert.Equal(t, 1, semaphore.GetCurrentConnections())

	evt := security.NewEvent(security.OutcomeAttackBlocked, security.SeverityHigh, time.Now())
	evt.IP = "198.51.100.7"
	require.NoError(t, hub.Handle(context.Background(), evt))

	msg := readMessage(t, conn)
	assert.Equal(t, infraWebsocket.MessageTypeEvent, msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, evt.ID, msg.Event.ID)
	assert.Equal(t, "198.51.100.7", msg.Event.IP)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return hub.Subscribers() == 0 && semaphore.GetCurrentConnections() == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestSecurityFeedHandler_HubCloseDisconnects(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hub := infraWebsocket.NewHub(logger)
	semaphore := infraWebsocket.NewSemaphore(1)
	url := startFeed(t, hub, semaphore)

	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	_, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, gorilla.IsCloseError(err, gorilla.CloseGoingAway), "unexpected error: %v", err)
	assert.Eventually(t, func() bool {
		return semaphore.GetCurrentConnections() == 0
	}, 5*time.Second, 20*time.Millisecond)
}
