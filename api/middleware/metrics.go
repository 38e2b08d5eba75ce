package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/retailpulse/retailpulse-backend/pkg/metrics"
)

// Metrics records per-route request durations. The label is the chi
// route pattern, not the raw path, so IDs do not explode cardinality.
func Metrics(pos *metrics.POSMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			pattern := r.URL.Path
			if ctx := chi.RouteContext(r.Context()); ctx != nil {
				if p := ctx.RoutePattern(); p != "" {
					pattern = p
				}
			}
			pos.ObserveDuration(r.Method+" "+pattern, time.Since(start))
		})
	}
}
