package security

// Category groups signature rules by the attack family they recognise.
// The string values are the labels stored with every detection.
type Category string

const (
	CategoryInjectionSQL     Category = "SQL Injection"
	CategoryXSS              Category = "XSS Attack"
	CategoryPathTraversal    Category = "Path Traversal"
	CategoryCommandInjection Category = "Command Injection"
	CategoryNoSQLOperator    Category = "NoSQL Injection"
)

// Categories lists every category in scan order.
var Categories = []Category{
	CategoryInjectionSQL,
	CategoryXSS,
	CategoryPathTraversal,
	CategoryCommandInjection,
	CategoryNoSQLOperator,
}

func (c Category) highRisk() bool {
	switch c {
	case CategoryInjectionSQL, CategoryCommandInjection, CategoryXSS:
		return true
	default:
		return false
	}
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Outcome is the kind of an inspection event.
type Outcome string

const (
	OutcomeLogged        Outcome = "Request Logged"
	OutcomeAttackBlocked Outcome = "Attack Detected"
	OutcomeRateLimited   Outcome = "Rate Limit Exceeded"
	OutcomeIPBlocked     Outcome = "IP Blocked"
	OutcomeErrorResponse Outcome = "Error Response"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeLogged, OutcomeAttackBlocked, OutcomeRateLimited, OutcomeIPBlocked, OutcomeErrorResponse:
		return true
	}
	return false
}

// DetectionHit is a single signature match.
type DetectionHit struct {
	Category Category `json:"type"`
	Pattern  string   `json:"pattern"`
}

// ClassifySeverity is high when any hit belongs to SQL injection, command
// injection or XSS, medium for any other hit and low without hits.
func ClassifySeverity(hits []DetectionHit) Severity {
	if len(hits) == 0 {
		return SeverityLow
	}
	for _, h := range hits {
		if h.Category.highRisk() {
			return SeverityHigh
		}
	}
	return SeverityMedium
}

// ErrorSeverity maps a failed response status to its severity.
func ErrorSeverity(statusCode int) Severity {
	if statusCode >= 500 {
		return SeverityHigh
	}
	return SeverityMedium
}
