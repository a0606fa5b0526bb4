package telemetry

// ExporterLocatorOption is a function that configures an ExporterLocator
type ExporterLocatorOption func(*ExporterLocator)

// WithExporter registers an exporter under its own name
func WithExporter(exporter Exporter) ExporterLocatorOption {
	return func(el *ExporterLocator) {
		if el.exporters == nil {
			el.exporters = make(map[string]Exporter)
		}
		el.exporters[exporter.Name()] = exporter
	}
}
