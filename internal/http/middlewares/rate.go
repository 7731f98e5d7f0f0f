package middlewares

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPOnlyRateKey genera una clave basada solo en IP.
// Útil para el login, donde el body trae credenciales.
func IPOnlyRateKey(r *http.Request) string {
	return clientIP(r) + "|" + r.URL.Path
}

// IPClientRateKey agrega el client_id del form (token endpoint). El body
// se lee sin consumirlo: el handler lo vuelve a leer con su propio límite.
func IPClientRateKey(r *http.Request) string {
	return clientIP(r) + "|" + r.URL.Path + "|" + peekClientID(r)
}

// maxKeyFormBytes es el máximo de body que se mira para sacar el client_id.
const maxKeyFormBytes = 64 << 10

type rewoundBody struct {
	io.Reader
	io.Closer
}

func peekClientID(r *http.Request) string {
	if r.Method != http.MethodPost || r.Body == nil || r.Body == http.NoBody {
		return "-"
	}
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct != "application/x-www-form-urlencoded" {
		return "-"
	}
	buf, err := io.ReadAll(io.LimitReader(r.Body, maxKeyFormBytes+1))
	r.Body = rewoundBody{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
	if err != nil || len(buf) > maxKeyFormBytes {
		return "-"
	}
	vals, err := url.ParseQuery(string(buf))
	if err != nil {
		return "-"
	}
	if v := vals.Get("client_id"); v != "" {
		return v
	}
	return "-"
}

// RateLimitConfig configura el comportamiento del middleware de rate limiting.
type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc
}

// WithRateLimit crea un middleware de rate limiting. Si el limiter falla
// (redis caído) el request pasa.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return nil
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPOnlyRateKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.Allow(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter error", logger.Component("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if res.ResetIn > 0 {
				h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetIn).Unix(), 10))
			}
			if !res.Allowed {
				secs := int(res.RetryAfter.Round(time.Second).Seconds())
				h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
				metrics.ObserveRateLimited(res.Route)
				logger.From(r.Context()).Info("rate limited",
					logger.Component("rate"), logger.String("route", res.Route), logger.Int64("hits", res.Hits))
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
