package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/authcore/internal/metrics"
)

// WithMetrics instrumenta requests HTTP con métricas Prometheus (contadores, latencia, inflight).
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			pathLabel := metrics.NormalizePath(r.URL.Path)

			metrics.InflightAdd(method, pathLabel, 1)
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				metrics.InflightAdd(method, pathLabel, -1)
				metrics.ObserveHTTP(method, pathLabel, rec.status, time.Since(start))
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
