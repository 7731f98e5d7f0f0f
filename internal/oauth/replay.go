package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/cache"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/token"
)

// ReplayGuard marca tokens de un solo uso (login tokens, codes) como
// consumidos.
type ReplayGuard interface {
	// Consume devuelve InvalidGrant(ErrTokenReplayed) si el jti ya se usó.
	Consume(ctx context.Context, p *token.Payload) error
}

// NoReplayGuard deja los tokens reutilizables hasta su exp.
type NoReplayGuard struct{}

func (NoReplayGuard) Consume(context.Context, *token.Payload) error { return nil }

// CacheReplayGuard registra cada jti en el cache; la entrada vive lo que le
// queda al token, después el token ya no pasa Parse.
type CacheReplayGuard struct {
	c   cache.Client
	now func() time.Time
}

func NewCacheReplayGuard(c cache.Client, now func() time.Time) *CacheReplayGuard {
	if now == nil {
		now = time.Now
	}
	return &CacheReplayGuard{c: c, now: now}
}

func (g *CacheReplayGuard) Consume(ctx context.Context, p *token.Payload) error {
	if p.ID == "" {
		return InvalidGrant(token.ErrMalformedToken)
	}
	first, err := g.c.MarkUsed(ctx, p.ID, string(p.Purpose), p.ExpiresIn(g.now()))
	if err != nil {
		return fmt.Errorf("oauth: replay guard: %w", err)
	}
	if !first {
		audit.Log(ctx, audit.TokenReplayed, logger.TokenID(p.ID), logger.Purpose(string(p.Purpose)), logger.ClientID(p.ClientID))
		return InvalidGrant(ErrTokenReplayed)
	}
	return nil
}
