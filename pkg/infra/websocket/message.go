package websocket

import (
	"encoding/json"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
)

const (
	MessageTypeEvent = "security_event"
	MessageTypeHello = "hello"
)

// Message is the envelope written to feed subscribers.
type Message struct {
	Type  string          `json:"type"`
	Event *security.Event `json:"event,omitempty"`
}

func encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
