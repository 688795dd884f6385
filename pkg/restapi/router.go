package restapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/lodthe/fromcheck/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type RouterOpts struct {
	Logger zerolog.Logger

	Tags TagSource

	// Reports is optional; stored reports cannot be fetched without it.
	Reports ReportRepository
	// Audits is optional; the latest periodic report is unavailable without it.
	Audits LatestReport

	Timeout time.Duration
}

func NewRouter(opts RouterOpts) http.Handler {
	r := chi.NewRouter()

	r.Use(metricsMiddleware)

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		newTagHandler(opts.Logger, opts.Tags).handle(r)
		newAuditHandler(opts.Logger, opts.Reports, opts.Audits).handle(r)
	})

	return r
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		routePattern := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			routePattern = strings.Join(rctx.RoutePatterns, "")
		}

		metrics.RestAPI.NewRequest(r.Method, routePattern, ww.Status(), time.Since(start))
	})
}
