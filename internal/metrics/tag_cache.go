package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var TagCache = TagCacheExporter{
	requests: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tag_cache",
			Name:      "requests_total",
			Help:      "How many tag lists were requested from the cache, partitioned by result (hit, miss or error).",
		},
		[]string{"result"},
	),
}

type TagCacheExporter struct {
	requests *prometheus.CounterVec
}

func (r *TagCacheExporter) Hit() {
	r.observe("hit")
}

func (r *TagCacheExporter) Miss() {
	r.observe("miss")
}

func (r *TagCacheExporter) Error() {
	r.observe("error")
}

func (r *TagCacheExporter) observe(result string) {
	r.requests.
		With(prometheus.Labels{
			"result": result,
		}).
		Inc()
}
