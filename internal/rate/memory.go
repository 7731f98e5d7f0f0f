package rate

import (
	"context"
	"math"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	xrate "golang.org/x/time/rate"
)

// MemoryLimiter: token bucket por key (x/time/rate). Permite ráfagas de
// hasta Limit requests y recarga Limit por Window. Los buckets ociosos se
// descartan después de dos ventanas.
type MemoryLimiter struct {
	policy Policy

	mu      sync.Mutex
	buckets *gocache.Cache
}

func NewMemoryLimiter(p Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:  p,
		buckets: gocache.New(2*p.Window, p.Window),
	}
}

func (l *MemoryLimiter) bucket(key string) *xrate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.buckets.Get(key); ok {
		lim := v.(*xrate.Limiter)
		l.buckets.SetDefault(key, lim)
		return lim
	}
	lim := xrate.NewLimiter(xrate.Every(l.policy.Window/time.Duration(l.policy.Limit)), l.policy.Limit)
	l.buckets.SetDefault(key, lim)
	return lim
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	lim := l.bucket(key)
	now := time.Now()
	allowed := lim.AllowN(now, 1)
	left := math.Max(0, math.Floor(lim.TokensAt(now)))
	limit := int64(l.policy.Limit)

	res := Result{
		Route:     l.policy.Route,
		Allowed:   allowed,
		Limit:     limit,
		Remaining: int64(left),
		Hits:      limit - int64(left),
		// tiempo hasta recargar el bucket completo
		ResetIn: time.Duration((float64(limit) - left) / float64(lim.Limit()) * float64(time.Second)),
	}
	if !allowed {
		missing := 1 - lim.TokensAt(now)
		res.RetryAfter = time.Duration(missing * float64(time.Second) / float64(lim.Limit()))
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Second
		}
	}
	return res, nil
}
