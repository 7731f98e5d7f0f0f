// Package router arma la tabla de rutas y el router chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/dropDatabas3/authcore/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/authcore/internal/http/controllers/oauth"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	mw "github.com/dropDatabas3/authcore/internal/http/middlewares"
	"github.com/dropDatabas3/authcore/internal/rate"
)

// Deps contiene todo lo que necesitan las rutas.
type Deps struct {
	OAuth  *oauthctrl.Controllers
	Health *healthctrl.HealthController

	// Codec valida los Bearer tokens de /oauth/tokeninfo.
	Codec mw.AccessTokenParser
	// TokenInfoScope es el scope exigido por /oauth/tokeninfo ("" = ninguno).
	TokenInfoScope string

	// ClientIP resuelve la IP de origen; nil = siempre la IP del peer.
	ClientIP *mw.ClientIPResolver

	// Limiters opcionales (nil = sin rate limit).
	LoginLimiter rate.Limiter
	TokenLimiter rate.Limiter

	// Metrics es el handler de /metrics (nil = ruta deshabilitada).
	Metrics http.Handler
}

// Route es una entrada de la tabla. Handler ya incluye sus middlewares.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}

// baseHandler es la cadena común: recover, request id, IP de origen,
// logging, métricas.
func baseHandler(ips *mw.ClientIPResolver, h http.Handler, extra ...mw.Middleware) http.Handler {
	mws := append([]mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithClientIP(ips),
		mw.WithLogging(),
		mw.WithMetrics(),
	}, extra...)
	return mw.Chain(h, mws...)
}

// infraHandler: health y métricas, sin logging (muy frecuentes).
func infraHandler(h http.Handler) http.Handler {
	return mw.Chain(h,
		mw.WithRecover(),
		mw.WithRequestID(),
	)
}

// Routes construye la tabla explícita de rutas.
func Routes(d Deps) []Route {
	var routes []Route

	if c := d.OAuth; c != nil {
		api := mw.WithSecurityHeaders(mw.APIContentSecurityPolicy)
		page := mw.WithSecurityHeaders(mw.PageContentSecurityPolicy)

		loginRL := mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: d.LoginLimiter,
			KeyFunc: mw.IPOnlyRateKey,
		})
		tokenRL := mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: d.TokenLimiter,
			KeyFunc: mw.IPClientRateKey,
		})

		routes = append(routes,
			Route{http.MethodGet, "/oauth/idp/ui/login",
				baseHandler(d.ClientIP, http.HandlerFunc(c.Login.ShowLogin), page, mw.WithNoStore())},
			Route{http.MethodPost, "/oauth/idp/login",
				baseHandler(d.ClientIP, http.HandlerFunc(c.Login.Login), api, mw.WithNoStore(), loginRL)},
			Route{http.MethodGet, "/oauth/authorize",
				baseHandler(d.ClientIP, http.HandlerFunc(c.Authorize.Authorize), api, mw.WithNoStore())},
			Route{http.MethodPost, "/oauth/token",
				baseHandler(d.ClientIP, http.HandlerFunc(c.Token.Token), api, mw.WithNoStore(), tokenRL)},
			Route{http.MethodGet, "/oauth/tokeninfo",
				baseHandler(d.ClientIP, http.HandlerFunc(c.TokenInfo.TokenInfo), api, mw.WithNoStore(),
					mw.RequireAccessToken(d.Codec), mw.RequireScope(d.TokenInfoScope))},
		)
	}

	if h := d.Health; h != nil {
		routes = append(routes,
			Route{http.MethodGet, "/healthz", infraHandler(http.HandlerFunc(h.Healthz))},
			Route{http.MethodGet, "/readyz", infraHandler(http.HandlerFunc(h.Readyz))},
		)
	}

	if d.Metrics != nil {
		routes = append(routes, Route{http.MethodGet, "/metrics", infraHandler(d.Metrics)})
	}
	return routes
}

// New registra Routes(d) en un router chi.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	for _, rt := range Routes(d) {
		r.Method(rt.Method, rt.Pattern, rt.Handler)
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})
	return r
}
