package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// statusRecorderPool reuses recorder instances to avoid a per-request
// allocation on the hot path.
var statusRecorderPool = sync.Pool{
	New: func() any {
		return &statusRecorder{statusCode: http.StatusOK}
	},
}

// statusRecorder captures the status code for the request counter label.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Metrics records request totals, latency and in-flight count for every
// request passing through the router. The path label uses the chi route
// pattern rather than the raw URL so parameterized routes collapse into one
// series instead of one per identifier.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		HTTPRequestInFlight.Inc()
		defer HTTPRequestInFlight.Dec()

		sr := statusRecorderPool.Get().(*statusRecorder)
		sr.ResponseWriter = w
		sr.statusCode = http.StatusOK

		next.ServeHTTP(sr, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		HTTPRequestTotals.WithLabelValues(r.Method, path, strconv.Itoa(sr.statusCode)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())

		statusRecorderPool.Put(sr)
	})
}
