// Package cache registra los jti de tokens de un solo uso (login tokens,
// codes) ya consumidos, en memoria (go-cache) o en Redis. Con Redis el
// registro se comparte entre réplicas y el cliente también alimenta al rate
// limiter.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Client es el registro de tokens consumidos.
type Client interface {
	// MarkUsed registra jti como consumido durante ttl, guardando el
	// purpose del token. Devuelve false si el jti ya estaba registrado.
	MarkUsed(ctx context.Context, jti, purpose string, ttl time.Duration) (bool, error)

	// Ping verifica la conexión (readyz).
	Ping(ctx context.Context) error
	Close() error
}

// Config configuración para crear un cliente de cache.
type Config struct {
	Kind     string // "memory" | "redis"
	Addr     string // host:port o redis://...
	Password string
	DB       int
	Prefix   string // Prefijo para todas las keys
}

// New crea un cliente de cache según la configuración.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Kind {
	case "redis":
		return NewRedis(ctx, cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("cache: unknown kind %q", cfg.Kind)
	}
}

// usedKey es la key de un jti consumido: [<prefix>:]jti:<id>.
func usedKey(prefix, jti string) string {
	if prefix == "" {
		return "jti:" + jti
	}
	return prefix + ":jti:" + jti
}

// minTTL evita registrar un jti sin expiración: un ttl <= 0 se sube a un
// segundo.
func minTTL(ttl time.Duration) time.Duration {
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}
