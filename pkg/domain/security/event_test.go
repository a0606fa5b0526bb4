package security

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name     string
		hits     []DetectionHit
		expected Severity
	}{
		{name: "no hits", hits: nil, expected: SeverityLow},
		{name: "sql injection", hits: []DetectionHit{{Category: CategoryInjectionSQL}}, expected: SeverityHigh},
		{name: "xss", hits: []DetectionHit{{Category: CategoryXSS}}, expected: SeverityHigh},
		{name: "command injection", hits: []DetectionHit{{Category: CategoryCommandInjection}}, expected: SeverityHigh},
		{name: "path traversal only", hits: []DetectionHit{{Category: CategoryPathTraversal}}, expected: SeverityMedium},
		{name: "nosql only", hits: []DetectionHit{{Category: CategoryNoSQLOperator}}, expected: SeverityMedium},
		{
			name: "mixed medium and high",
			hits: []DetectionHit{
				{Category: CategoryPathTraversal},
				{Category: CategoryNoSQLOperator},
				{Category: CategoryXSS},
			},
			expected: SeverityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySeverity(tt.hits))
		})
	}
}

func TestErrorSeverity(t *testing.T) {
	assert.Equal(t, SeverityMedium, ErrorSeverity(404))
	assert.Equal(t, SeverityMedium, ErrorSeverity(499))
	assert.Equal(t, SeverityHigh, ErrorSeverity(500))
	assert.Equal(t, SeverityHigh, ErrorSeverity(503))
}

func TestNewEvent_IDsSortByCreation(t *testing.T) {
	now := time.Now()
	first := NewEvent(OutcomeLogged, SeverityLow, now)
	second := NewEvent(OutcomeLogged, SeverityLow, now)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Less(t, first.ID, second.ID)
	assert.NotNil(t, first.Detections)
	assert.Equal(t, time.UTC, first.Timestamp.Location())
}

func TestEvent_JSONShape(t *testing.T) {
	evt := NewEvent(OutcomeAttackBlocked, SeverityHigh, time.Now())
	evt.IP = "10.0.0.1"
	evt.Detections = Detections{{Category: CategoryXSS, Pattern: "javascript:"}}
	evt.RequestBody = Payload(`{"q":"x"}`)

	raw, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Attack Detected", decoded["type"])
	assert.Equal(t, "high", decoded["severity"])
	assert.Nil(t, decoded["userId"])
	assert.Equal(t, map[string]interface{}{"q": "x"}, decoded["requestBody"])
	detections, ok := decoded["detections"].([]interface{})
	require.True(t, ok)
	require.Len(t, detections, 1)
	assert.Equal(t, "XSS Attack", detections[0].(map[string]interface{})["type"])
}

func TestDetections_ValueAndScan(t *testing.T) {
	var empty Detections
	v, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	in := Detections{{Category: CategoryPathTraversal, Pattern: `etc\/passwd`}}
	v, err = in.Value()
	require.NoError(t, err)

	var out Detections
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.Empty(t, out)
	assert.Error(t, out.Scan(42))
}

func TestFilter_Matches(t *testing.T) {
	evt := &Event{Type: OutcomeRateLimited, Severity: SeverityMedium}

	assert.True(t, Filter{}.Matches(evt))
	assert.True(t, Filter{Severity: SeverityMedium}.Matches(evt))
	assert.False(t, Filter{Severity: SeverityHigh}.Matches(evt))
	assert.True(t, Filter{Type: OutcomeRateLimited, Severity: SeverityMedium}.Matches(evt))
	assert.False(t, Filter{Type: OutcomeLogged}.Matches(evt))
}
