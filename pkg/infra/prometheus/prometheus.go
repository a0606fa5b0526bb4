package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		1, 5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	InspectionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteguard_inspections_total",
			Help: "Security events recorded, by outcome and severity",
		},
		[]string{"outcome", "severity"},
	)

	DetectionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteguard_detections_total",
			Help: "Signature matches by attack category",
		},
		[]string{"category"},
	)

	RejectionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteguard_rejections_total",
			Help: "Requests rejected by the inspector",
		},
		[]string{"reason"},
	)

	InspectionLatency = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "siteguard_inspection_latency_ms",
			Help:    "Time spent in the inspection pipeline in milliseconds",
			Buckets: latencyBuckets,
		},
	)

	UpstreamLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "siteguard_upstream_latency_ms",
			Help:    "Upstream site latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"method", "status"},
	)

	BlockedClients = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "siteguard_blocked_clients",
			Help: "Number of clients on the block list",
		},
	)
)

type MetricsConfig struct {
	EnableLatency bool
}

var Config MetricsConfig

func Initialize(cfg MetricsConfig) {
	Config = cfg
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

// Gatherer exposes the siteguard registry to the metrics endpoint.
func Gatherer() prometheus.Gatherer {
	return registry
}

// SetBlockedClients is a blocklist.Observer.
func SetBlockedClients(size int) {
	BlockedClients.Set(float64(size))
}
