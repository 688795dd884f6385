package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var Audit = AuditExporter{
	images: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "audit",
			Name:      "images_total",
			Help:      "How many base images were audited, partitioned by the audit status.",
		},
		[]string{"status"},
	),
	outdated: promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "audit",
			Name:      "outdated_images",
			Help:      "How many base images were outdated during the last audit.",
		},
	),
	duration: promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "audit",
			Name:      "duration_seconds",
			Help:      "How long it took to audit all Dockerfiles.",
			Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	),
}

type AuditExporter struct {
	images   *prometheus.CounterVec
	outdated prometheus.Gauge
	duration prometheus.Histogram
}

func (r *AuditExporter) Image(status string) {
	r.images.
		With(prometheus.Labels{
			"status": status,
		}).
		Inc()
}

func (r *AuditExporter) Finished(outdated int, startedAt time.Time) {
	r.outdated.Set(float64(outdated))
	r.duration.Observe(time.Since(startedAt).Seconds())
}
