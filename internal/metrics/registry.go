package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var Registry = RegistryExporter{
	total: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "requests_total",
			Help:      "How many requests were sent to the image registry, partitioned by response status.",
		},
		[]string{"status"},
	),
	duration: promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "registry",
			Name:      "request_duration_seconds",
			Help:      "How long it took the registry to respond.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
		},
		[]string{"status"},
	),
}

type RegistryExporter struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRequest observes a registry request. Status is the HTTP status code or "error".
func (r *RegistryExporter) NewRequest(status string, duration time.Duration) {
	labels := prometheus.Labels{
		"status": status,
	}

	r.total.With(labels).Inc()
	r.duration.With(labels).Observe(duration.Seconds())
}
