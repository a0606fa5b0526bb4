package telemetry

import (
	"fmt"

	"github.com/NeuralTrust/SiteGuard/pkg/config"
	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
)

// Exporter is a named factory for event sinks configured from free-form
// settings.
type Exporter interface {
	Name() string
	ValidateConfig(settings map[string]interface{}) error
	WithSettings(settings map[string]interface{}) (security.EventSink, error)
}

type ExporterLocator struct {
	exporters map[string]Exporter
}

func NewExporterLocator(opts ...ExporterLocatorOption) *ExporterLocator {
	el := &ExporterLocator{
		exporters: make(map[string]Exporter),
	}
	for _, opt := range opts {
		opt(el)
	}
	return el
}

func (p *ExporterLocator) GetExporter(exporter config.ExporterConfig) (security.EventSink, error) {
	base, ok := p.exporters[exporter.Name]
	if !ok {
		return nil, fmt.Errorf("unknown exporter: %s", exporter.Name)
	}
	if err := base.ValidateConfig(exporter.Settings); err != nil {
		return nil, fmt.Errorf("exporter %s: %w", exporter.Name, err)
	}
	return base.WithSettings(exporter.Settings)
}

// Build resolves every configured exporter. Sinks already built are closed
// when a later one fails.
func (p *ExporterLocator) Build(exporters []config.ExporterConfig) ([]security.EventSink, error) {
	sinks := make([]security.EventSink, 0, len(exporters))
	for _, cfg := range exporters {
		sink, err := p.GetExporter(cfg)
		if err != nil {
			for _, s := range sinks {
				s.Close()
			}
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}
