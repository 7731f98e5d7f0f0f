package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// cachedStore pone un cache TTL delante de GetClient. Los lookups
// concurrentes del mismo client_id se colapsan en uno solo (singleflight).
// Los usuarios no se cachean: el hash de password se lee siempre fresco.
type cachedStore struct {
	Store
	clients *gocache.Cache
	sf      singleflight.Group
}

// WithClientCache envuelve s. ErrNotFound no se cachea.
func WithClientCache(s Store, ttl time.Duration) Store {
	return &cachedStore{
		Store:   s,
		clients: gocache.New(ttl, 2*ttl),
	}
}

func (c *cachedStore) GetClient(ctx context.Context, clientID string) (*Client, error) {
	if v, ok := c.clients.Get(clientID); ok {
		return v.(*Client).clone(), nil
	}

	// El lookup compartido no hereda la cancelación de quien lo inició; cada
	// caller deja de esperar cuando se cancela su propio ctx.
	lookupCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(clientID, func() (any, error) {
		if v, ok := c.clients.Get(clientID); ok {
			return v, nil
		}
		cl, err := c.Store.GetClient(lookupCtx, clientID)
		if err != nil {
			return nil, err
		}
		c.clients.SetDefault(clientID, cl)
		return cl, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Client).clone(), nil
	}
}
