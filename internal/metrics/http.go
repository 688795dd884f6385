package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var RestAPI = RestAPIExporter{
	total: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "http",
			Name:      "requests_total",
			Help:      "How many API requests were handled, partitioned by route and response code.",
		},
		[]string{"method", "route", "code"},
	),
	duration: promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "http",
			Name:      "request_duration_seconds",
			Help:      "How long it took to handle the request. Cache misses include the registry round trip.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 15},
		},
		[]string{"method", "route"},
	),
}

type RestAPIExporter struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRequest observes a handled request. An empty route means that no route matched.
func (r *RestAPIExporter) NewRequest(method, route string, code int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}

	r.total.With(prometheus.Labels{
		"method": method,
		"route":  route,
		"code":   strconv.Itoa(code),
	}).Inc()

	r.duration.With(prometheus.Labels{
		"method": method,
		"route":  route,
	}).Observe(duration.Seconds())
}
