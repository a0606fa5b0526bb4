package websocket

import (
	"context"
	"fmt"
	"sync"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	SinkName         = "feed"
	subscriberBuffer = 64
)

// Hub broadcasts stored events to live feed subscribers. A subscriber that
// falls behind loses messages instead of slowing the others down.
type Hub struct {
	logger      *logrus.Logger
	mu          sync.RWMutex
	subscribers map[string]chan []byte
	closed      bool
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger:      logger,
		subscribers: make(map[string]chan []byte),
	}
}

// Subscribe registers a subscriber. The returned cancel func is idempotent
// and closes the channel.
func (h *Hub) Subscribe() (string, <-chan []byte, func()) {
	id := uuid.NewString()
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return id, ch, func() {}
	}
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return id, ch, func() {
		once.Do(func() { h.unsubscribe(id) })
	}
}

func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) Name() string {
	return SinkName
}

func (h *Hub) Handle(_ context.Context, event *security.Event) error {
	data, err := encode(Message{Type: MessageTypeEvent, Event: event})
	if err != nil {
		return fmt.Errorf("failed to encode feed message: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- data:
		default:
			h.logger.WithField("subscriber", id).Warn("feed subscriber is behind, dropping event")
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
}

// Hello is the first frame sent on a new feed connection.
func Hello() []byte {
	data, _ := encode(Message{Type: MessageTypeHello})
	return data
}
