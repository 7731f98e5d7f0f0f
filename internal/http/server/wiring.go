// Package server arma el grafo de dependencias del servidor HTTP a partir
// de la configuración.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/authcore/internal/cache"
	"github.com/dropDatabas3/authcore/internal/config"
	healthctrl "github.com/dropDatabas3/authcore/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/authcore/internal/http/controllers/oauth"
	mw "github.com/dropDatabas3/authcore/internal/http/middlewares"
	"github.com/dropDatabas3/authcore/internal/http/router"
	"github.com/dropDatabas3/authcore/internal/http/templates"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/oauth"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/rate"
	"github.com/dropDatabas3/authcore/internal/security/password"
	"github.com/dropDatabas3/authcore/internal/security/token"
	"github.com/dropDatabas3/authcore/internal/store"
	"github.com/dropDatabas3/authcore/internal/util"
)

// Options permite inyectar piezas en tests.
type Options struct {
	// Registerer de métricas; nil = prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Codec son opciones extra del codec (reloj en tests).
	Codec []token.Option
}

// StoreConfig traduce la sección storage.
func StoreConfig(cfg *config.Config) store.Config {
	s := cfg.Storage
	return store.Config{
		Driver:          s.Driver,
		DSN:             s.DSN,
		FSPath:          s.FSPath,
		MaxOpenConns:    s.MaxOpenConns,
		MaxIdleConns:    s.MaxIdleConns,
		ConnMaxLifetime: s.ConnMaxLifetime,
		Migrate:         s.Migrate,
		ClientCacheTTL:  s.ClientCacheTTL,
	}
}

// HasherFor construye el hasher con los parámetros argon2 configurados.
func HasherFor(cfg *config.Config) *password.Hasher {
	a := cfg.Security.Argon2
	return password.NewHasher(password.Params{
		Memory:      a.Memory,
		Time:        a.Time,
		Parallelism: a.Parallelism,
		KeyLen:      a.KeyLen,
	})
}

// PolicyFor devuelve la política de contraseñas configurada.
func PolicyFor(cfg *config.Config) password.Policy {
	p := cfg.Security.PasswordPolicy
	return password.Policy{
		MinLength:     p.MinLength,
		RequireUpper:  p.RequireUpper,
		RequireLower:  p.RequireLower,
		RequireDigit:  p.RequireDigit,
		RequireSymbol: p.RequireSymbol,
	}
}

// SettingsFor traduce token + oauth a oauth.Settings.
func SettingsFor(cfg *config.Config) oauth.Settings {
	return oauth.Settings{
		AccessTTL:            cfg.Token.AccessTTL,
		LoginTTL:             cfg.Token.LoginTTL,
		CodeTTL:              cfg.Token.CodeTTL,
		PasswordGrantEnabled: cfg.OAuth.PasswordGrantEnabled,
		AllowedReturnHosts:   cfg.OAuth.AllowedReturnHosts,
	}
}

// Build arma el handler HTTP. cleanup cierra store y cache.
func Build(ctx context.Context, cfg *config.Config, opts Options) (http.Handler, func() error, error) {
	log := logger.L().With(logger.Component("wiring"))

	st, err := store.Open(ctx, StoreConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("store: %w", err)
	}

	cc, err := cache.New(ctx, cache.Config{
		Kind:     cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("cache: %w", err)
	}
	cleanup := func() error {
		return errors.Join(cc.Close(), st.Close())
	}
	fail := func(err error) (http.Handler, func() error, error) {
		_ = cleanup()
		return nil, nil, err
	}

	codec, err := token.NewCodec([]byte(cfg.Token.Secret), opts.Codec...)
	if err != nil {
		return fail(fmt.Errorf("token codec: %w", err))
	}

	auth, err := oauth.NewAuthenticator(st, HasherFor(cfg))
	if err != nil {
		return fail(err)
	}

	var replay oauth.ReplayGuard = oauth.NoReplayGuard{}
	if cfg.OAuth.SingleUseTokens {
		replay = oauth.NewCacheReplayGuard(cc, codec.Now)
	}

	renderer, err := templates.New()
	if err != nil {
		return fail(fmt.Errorf("templates: %w", err))
	}

	settings := SettingsFor(cfg)
	factory := oauth.NewFactory(oauth.Deps{
		Clients:  st,
		Auth:     auth,
		Codec:    codec,
		Replay:   replay,
		Settings: settings,
	})
	authz := oauth.NewAuthorizationEndpoint(factory)
	idp := oauth.NewIdentityProviderEndpoint(auth, codec, renderer, settings)

	ips, err := mw.NewClientIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return fail(fmt.Errorf("server.trusted_proxies: %w", err))
	}

	metricsHandler, err := metrics.Register(opts.Registerer)
	if err != nil {
		return fail(fmt.Errorf("metrics: %w", err))
	}

	deps := router.Deps{
		OAuth: oauthctrl.NewControllers(authz, idp, codec.Now),
		Health: healthctrl.NewHealthController(cfg.App.Version,
			healthctrl.Component{Name: "store", Pinger: st, Critical: true},
			healthctrl.Component{Name: "cache", Pinger: cc, Critical: cfg.OAuth.SingleUseTokens},
		),
		Codec:          codec,
		TokenInfoScope: cfg.OAuth.TokenInfoScope,
		ClientIP:       ips,
		Metrics:        metricsHandler,
	}
	if cfg.Rate.Enabled {
		deps.LoginLimiter, deps.TokenLimiter = limiters(cfg, cc)
	}

	log.Info("wiring ready",
		logger.String("storage", cfg.Storage.Driver),
		logger.String("dsn", util.MaskDSN(cfg.Storage.DSN)),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("single_use_tokens", cfg.OAuth.SingleUseTokens),
		logger.Bool("password_grant", cfg.OAuth.PasswordGrantEnabled),
		logger.Bool("rate_limit", cfg.Rate.Enabled),
		logger.Int("trusted_proxies", len(cfg.Server.TrustedProxies)),
	)
	return router.New(deps), cleanup, nil
}

// limiters usa redis si el cache es redis (ventana compartida entre
// réplicas) y token buckets en memoria si no.
func limiters(cfg *config.Config, cc cache.Client) (login, tok rate.Limiter) {
	lp := rate.Policy{Route: "login", Limit: cfg.Rate.Login.Limit, Window: cfg.Rate.Login.Window}
	tp := rate.Policy{Route: "token", Limit: cfg.Rate.Token.Limit, Window: cfg.Rate.Token.Window}
	if r, ok := cc.(interface{ Redis() *goredis.Client }); ok {
		prefix := cfg.Cache.Redis.Prefix + ":rl:"
		return rate.NewRedisLimiter(r.Redis(), prefix, lp), rate.NewRedisLimiter(r.Redis(), prefix, tp)
	}
	return rate.NewMemoryLimiter(lp), rate.NewMemoryLimiter(tp)
}
