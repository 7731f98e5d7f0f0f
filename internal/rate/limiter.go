// Package rate limita requests por key (IP, IP+client_id). Dos backends:
// RedisLimiter (fixed window compartido entre réplicas) y MemoryLimiter
// (token bucket por proceso). Cada limiter sirve a una sola ruta, descrita
// por su Policy.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Policy es el límite de una ruta: Limit requests por Window.
type Policy struct {
	Route  string // "login" | "token"; también es el label de métricas
	Limit  int
	Window time.Duration
}

// Result es la decisión para un request.
type Result struct {
	Route      string
	Allowed    bool
	Limit      int64
	Remaining  int64
	Hits       int64
	RetryAfter time.Duration // solo si !Allowed
	ResetIn    time.Duration // hasta que se renueva la cuota
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter cuenta hits en una key por ventana:
// <prefix><route>:<key>:<inicio de ventana>. La key expira al cerrar la
// ventana (PEXPIREAT absoluto, idempotente en cada hit).
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	policy Policy
	now    func() time.Time
}

func NewRedisLimiter(client *rdb.Client, prefix string, p Policy) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, policy: p, now: time.Now}
}

func (l *RedisLimiter) windowKey(key string, start time.Time) string {
	return fmt.Sprintf("%s%s:%s:%d", l.prefix, l.policy.Route, strings.ReplaceAll(key, " ", "_"), start.Unix())
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now().UTC()
	start := now.Truncate(l.policy.Window)
	end := start.Add(l.policy.Window)
	k := l.windowKey(key, start)

	var hits *rdb.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe rdb.Pipeliner) error {
		hits = pipe.Incr(ctx, k)
		pipe.PExpireAt(ctx, k, end)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("rate: redis %s: %w", l.policy.Route, err)
	}
	return decide(l.policy, hits.Val(), end.Sub(now)), nil
}

// decide arma el Result de una ventana fija con hits ya contados.
func decide(p Policy, hits int64, resetIn time.Duration) Result {
	limit := int64(p.Limit)
	if resetIn <= 0 {
		resetIn = p.Window
	}
	res := Result{
		Route:     p.Route,
		Allowed:   hits <= limit,
		Limit:     limit,
		Remaining: max(0, limit-hits),
		Hits:      hits,
		ResetIn:   resetIn,
	}
	if !res.Allowed {
		res.RetryAfter = resetIn
	}
	return res
}
