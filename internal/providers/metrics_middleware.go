package providers

import (
	"net/http"
	"time"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// UnmatchedEndpoint labels requests for paths outside the route table.
const UnmatchedEndpoint = "other"

// MetricsMiddleware counts and times requests per registered route. Any
// other path shares the UnmatchedEndpoint label so stray URLs cannot grow
// the series set.
func MetricsMiddleware(metrics MetricsProviderInterface, routes []string, next http.Handler) http.Handler {
	known := make(map[string]struct{}, len(routes))
	for _, url := range routes {
		known[url] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		endpoint := UnmatchedEndpoint
		if _, ok := known[r.URL.Path]; ok {
			endpoint = r.URL.Path
		}
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, time.Since(start))
	})
}
