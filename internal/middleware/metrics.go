package middleware

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/review-service/internal/platform/metrics"
)

// Metrics records request count and latency labelled by route pattern.
func Metrics(mm *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			mm.ObserveRequest(r.Method, route, rec.status, time.Since(start))
		})
	}
}
