package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient guarda los jti en un go-cache. Sirve para un solo nodo y
// para tests.
type memoryClient struct {
	prefix string
	used   *gocache.Cache
}

// NewMemory crea el registro en memoria. Los jti vencidos se purgan cada
// minuto.
func NewMemory(prefix string) *memoryClient {
	return &memoryClient{
		prefix: prefix,
		used:   gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// MarkUsed usa Add de go-cache, que falla si la key existe y no venció.
func (c *memoryClient) MarkUsed(_ context.Context, jti, purpose string, ttl time.Duration) (bool, error) {
	if err := c.used.Add(usedKey(c.prefix, jti), purpose, minTTL(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *memoryClient) Ping(context.Context) error { return nil }

func (c *memoryClient) Close() error {
	c.used.Flush()
	return nil
}
