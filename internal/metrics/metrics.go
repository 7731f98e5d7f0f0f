// Package metrics define los collectors Prometheus del servidor. Vive en un
// paquete propio para que oauth y http lo usen sin ciclos de imports.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once    sync.Once
	initErr error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	// OAuth metrics
	grantsTotal       *prometheus.CounterVec
	tokensIssuedTotal *prometheus.CounterVec
	loginsTotal       *prometheus.CounterVec
	rateLimitedTotal  *prometheus.CounterVec
)

// Register crea y registra los collectors una sola vez (reg nil = default
// registerer). Devuelve el handler para /metrics.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	once.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		grantsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_grants_total",
			Help: "Grants procesados por tipo y resultado",
		}, []string{"grant_type", "result"}) // result: ok | <error kind>

		tokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_tokens_issued_total",
			Help: "Tokens emitidos por propósito",
		}, []string{"purpose"})

		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_logins_total",
			Help: "Intentos de login en el identity provider",
		}, []string{"result"})

		rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rechazadas por rate limit",
		}, []string{"route"})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight,
			grantsTotal, tokensIssuedTotal, loginsTotal, rateLimitedTotal,
		} {
			if err := registerCollector(reg, c); err != nil {
				initErr = err
				return
			}
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// Los Observe* son no-op hasta que se llama Register.

func InflightAdd(method, path string, delta float64) {
	if httpInflight != nil {
		httpInflight.WithLabelValues(method, path).Add(delta)
	}
}

func ObserveHTTP(method, path string, status int, d time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func ObserveGrant(grantType, result string) {
	if grantsTotal != nil {
		grantsTotal.WithLabelValues(grantType, result).Inc()
	}
}

func ObserveTokenIssued(purpose string) {
	if tokensIssuedTotal != nil {
		tokensIssuedTotal.WithLabelValues(purpose).Inc()
	}
}

func ObserveLogin(result string) {
	if loginsTotal != nil {
		loginsTotal.WithLabelValues(result).Inc()
	}
}

func ObserveRateLimited(route string) {
	if rateLimitedTotal != nil {
		rateLimitedTotal.WithLabelValues(route).Inc()
	}
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// NormalizePath colapsa segmentos dinámicos (ids, tokens) a ":param" para
// acotar la cardinalidad del label path.
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" {
		return "/"
	}

	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
