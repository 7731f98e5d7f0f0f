package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// Ambos backends deben cumplir el mismo contrato.
func backends(t *testing.T) map[string]Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return map[string]Client{
		"memory": NewMemory("t"),
		"redis":  NewRedisFromClient(rdb, "t"),
	}
}

func TestClient_MarkUsedOnce(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first, err := c.MarkUsed(ctx, "jti-1", "login", time.Minute)
			require.NoError(t, err)
			require.True(t, first)

			again, err := c.MarkUsed(ctx, "jti-1", "code", time.Minute)
			require.NoError(t, err)
			require.False(t, again)

			other, err := c.MarkUsed(ctx, "jti-2", "login", time.Minute)
			require.NoError(t, err)
			require.True(t, other)
			require.NoError(t, c.Ping(ctx))
		})
	}
}

func TestRedis_KeyLayoutAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), Config{Kind: "redis", Addr: mr.Addr(), Prefix: "authcore"})
	require.NoError(t, err)
	defer c.Close()

	ok, err := c.MarkUsed(context.Background(), "abc", "code", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	v, err := mr.Get("authcore:jti:abc")
	require.NoError(t, err)
	require.Equal(t, "code", v)
	require.Equal(t, 30*time.Second, mr.TTL("authcore:jti:abc"))

	mr.FastForward(31 * time.Second)
	ok, err = c.MarkUsed(context.Background(), "abc", "code", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok, "un jti vencido se puede volver a registrar")
}

func TestRedis_URLAddr(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), Config{Kind: "redis", Addr: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Ping(context.Background()))
}

func TestRedisOptions(t *testing.T) {
	o, err := redisOptions(Config{Addr: "cache.internal", Password: "pw", DB: 2})
	require.NoError(t, err)
	require.Equal(t, "cache.internal:6379", o.Addr)
	require.Equal(t, "pw", o.Password)
	require.Equal(t, 2, o.DB)

	o, err = redisOptions(Config{Addr: "redis://:secret@r:6380/3"})
	require.NoError(t, err)
	require.Equal(t, "r:6380", o.Addr)
	require.Equal(t, "secret", o.Password)
	require.Equal(t, 3, o.DB)

	_, err = redisOptions(Config{Addr: "http://nope"})
	require.Error(t, err)
}

func TestMemory_ExpiredJTIIsWritableAgain(t *testing.T) {
	c := NewMemory("")
	ctx := context.Background()

	ok, err := c.MarkUsed(ctx, "a", "login", 0)
	require.NoError(t, err)
	require.True(t, ok)
	item, found := c.used.Items()[usedKey("", "a")]
	require.True(t, found)
	require.NotZero(t, item.Expiration, "ttl 0 no registra el jti para siempre")

	_, err = c.MarkUsed(ctx, "b", "code", 20*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	ok, err = c.MarkUsed(ctx, "b", "code", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "memcached"})
	require.Error(t, err)
}
