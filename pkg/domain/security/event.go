package security

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type (
	// Detections is stored as a jsonb array.
	Detections []DetectionHit

	// Payload is an echoed request body. It is kept as JSON when the body
	// was JSON and as a JSON string otherwise.
	Payload json.RawMessage

	// ClientInfo is derived from the user agent.
	ClientInfo struct {
		Device  string `json:"device,omitempty"`
		OS      string `json:"os,omitempty"`
		Browser string `json:"browser,omitempty"`
		Locale  string `json:"locale,omitempty"`
	}
)

// Event is one audit record of a security relevant request outcome.
type Event struct {
	ID          string      `json:"id" gorm:"type:text;primaryKey"`
	Timestamp   time.Time   `json:"timestamp" gorm:"not null;index"`
	Type        Outcome     `json:"type" gorm:"type:text;not null;index"`
	Severity    Severity    `json:"severity" gorm:"type:text;not null;index"`
	Method      string      `json:"method,omitempty" gorm:"type:text"`
	Path        string      `json:"path,omitempty" gorm:"type:text"`
	IP          string      `json:"ip" gorm:"column:ip;type:text;not null;index"`
	UserAgent   string      `json:"userAgent,omitempty" gorm:"type:text"`
	Client      *ClientInfo `json:"client,omitempty" gorm:"type:jsonb"`
	UserID      *string     `json:"userId" gorm:"type:text"`
	UserEmail   *string     `json:"userEmail" gorm:"type:text"`
	Detections  Detections  `json:"detections" gorm:"type:jsonb"`
	RequestBody Payload     `json:"requestBody,omitempty" gorm:"type:jsonb"`
	StatusCode  int         `json:"statusCode,omitempty"`
	Details     string      `json:"details,omitempty" gorm:"type:text"`
	Response    string      `json:"response,omitempty" gorm:"type:text"`
	TraceID     string      `json:"traceId,omitempty" gorm:"type:text"`
}

func (e *Event) TableName() string {
	return "security_events"
}

// NewEvent stamps a new event with a time ordered id.
func NewEvent(outcome Outcome, severity Severity, now time.Time) *Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Event{
		ID:         id.String(),
		Timestamp:  now.UTC(),
		Type:       outcome,
		Severity:   severity,
		Detections: Detections{},
	}
}

// IsAttack reports whether the event carries at least one detection.
func (e *Event) IsAttack() bool {
	return len(e.Detections) > 0
}

func (d Detections) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]DetectionHit(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *Detections) Scan(value interface{}) error {
	if value == nil {
		*d = Detections{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("expected []byte, got %T", value)
	}
	return json.Unmarshal(raw, (*[]DetectionHit)(d))
}

func (c ClientInfo) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *ClientInfo) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("expected []byte, got %T", value)
	}
}

func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return string(p), nil
}

func (p *Payload) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append((*p)[:0], v...)
	case string:
		*p = Payload(v)
	default:
		return fmt.Errorf("expected []byte, got %T", value)
	}
	return nil
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	if p == nil {
		return fmt.Errorf("security.Payload: UnmarshalJSON on nil pointer")
	}
	*p = append((*p)[:0], data...)
	return nil
}
