package security

import "time"

const (
	DefaultQueryLimit = 100
	TopClientsLimit   = 10
	RecentAttackLimit = 10
)

// Filter narrows an event log query. Zero values mean "any".
type Filter struct {
	Severity Severity
	Type     Outcome
	Limit    int
	Offset   int
}

func (f Filter) Matches(e *Event) bool {
	if f.Severity != "" && e.Severity != f.Severity {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	return true
}

// Page is a window over the filtered, newest first event list.
type Page struct {
	Events []*Event `json:"logs"`
	Total  int      `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}

type ClientCount struct {
	IP    string `json:"ip"`
	Count int    `json:"count"`
}

type Stats struct {
	Total         int              `json:"total"`
	Last24Hours   int              `json:"last24Hours"`
	BySeverity    map[Severity]int `json:"bySeverity"`
	ByType        map[Outcome]int  `json:"byType"`
	TopIPs        []ClientCount    `json:"topIPs"`
	RecentAttacks []*Event         `json:"recentAttacks"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

// BlockEntry is a blocked client identifier.
type BlockEntry struct {
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	BlockedAt time.Time `json:"blockedAt"`
}
