package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/NeuralTrust/SiteGuard/pkg/config"
	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExporter struct {
	name            string
	validateErr     error
	withSettingsErr error
	closed          int
}

func (m *mockExporter) Name() string { return m.name }

func (m *mockExporter) ValidateConfig(map[string]interface{}) error { return m.validateErr }

func (m *mockExporter) WithSettings(map[string]interface{}) (security.EventSink, error) {
	if m.withSettingsErr != nil {
		return nil, m.withSettingsErr
	}
	return m, nil
}

func (m *mockExporter) Handle(context.Context, *security.Event) error { return nil }

func (m *mockExporter) Close() { m.closed++ }

func TestExporterLocator_GetExporter(t *testing.T) {
	locator := NewExporterLocator(WithExporter(&mockExporter{name: "kafka"}))

	sink, err := locator.GetExporter(config.ExporterConfig{Name: "kafka"})
	require.NoError(t, err)
	assert.Equal(t, "kafka", sink.Name())

	_, err = locator.GetExporter(config.ExporterConfig{Name: "unknown"})
	assert.EqualError(t, err, "unknown exporter: unknown")
}

func TestExporterLocator_InvalidSettings(t *testing.T) {
	locator := NewExporterLocator(WithExporter(&mockExporter{name: "kafka", validateErr: errors.New("kafka topic is required")}))

	_, err := locator.GetExporter(config.ExporterConfig{Name: "kafka"})
	assert.EqualError(t, err, "exporter kafka: kafka topic is required")
}

func TestExporterLocator_BuildClosesOnFailure(t *testing.T) {
	good := &mockExporter{name: "good"}
	bad := &mockExporter{name: "bad", withSettingsErr: errors.New("broker unreachable")}
	locator := NewExporterLocator(WithExporter(good), WithExporter(bad))

	sinks, err := locator.Build([]config.ExporterConfig{{Name: "good"}, {Name: "bad"}})
	assert.Error(t, err)
	assert.Nil(t, sinks)
	assert.Equal(t, 1, good.closed)

	sinks, err = locator.Build(nil)
	require.NoError(t, err)
	assert.Empty(t, sinks)
}
