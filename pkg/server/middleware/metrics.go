package middleware

import (
	"net/http"
	"time"

	"mercator-hq/converter/pkg/telemetry/metrics"
)

// Metrics records request count and latency under a fixed route label. The
// label is the route pattern, never the raw path, to bound cardinality.
func Metrics(collector *metrics.Collector, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)
			collector.RecordHTTPRequest(route, r.Method, rw.statusCode, time.Since(start))
		})
	}
}
