package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var loginPolicy = Policy{Route: "login", Limit: 2, Window: time.Minute}

func newRedisLimiter(t *testing.T, p Policy) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, "authcore:rl:", p), mr
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	l, _ := newRedisLimiter(t, loginPolicy)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, res.Allowed)
		require.Equal(t, "login", res.Route)
	}
	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.EqualValues(t, 0, res.Remaining)
	require.EqualValues(t, 3, res.Hits)
	require.EqualValues(t, 2, res.Limit)
	require.Greater(t, res.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, res.RetryAfter, time.Minute)

	// otra key, otro contador
	res, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}

func TestRedisLimiter_KeyLayoutAndExpiry(t *testing.T) {
	l, mr := newRedisLimiter(t, loginPolicy)
	start := time.Now().UTC().Truncate(time.Minute)
	now := start.Add(15 * time.Second)
	l.now = func() time.Time { return now }
	mr.SetTime(now)

	res, err := l.Allow(context.Background(), "1.2.3.4|/oauth/idp/login")
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, res.ResetIn)

	key := l.windowKey("1.2.3.4|/oauth/idp/login", start)
	require.True(t, mr.Exists(key))
	require.Contains(t, key, "authcore:rl:login:")

	mr.FastForward(46 * time.Second)
	require.False(t, mr.Exists(key), "la key vence con la ventana")
}

func TestRedisLimiter_RoutesDoNotShareCounters(t *testing.T) {
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	defer client.Close()

	login := NewRedisLimiter(client, "rl:", Policy{Route: "login", Limit: 1, Window: time.Minute})
	tok := NewRedisLimiter(client, "rl:", Policy{Route: "token", Limit: 1, Window: time.Minute})
	ctx := context.Background()

	res, _ := login.Allow(ctx, "k")
	require.True(t, res.Allowed)
	res, _ = tok.Allow(ctx, "k")
	require.True(t, res.Allowed)
	res, _ = login.Allow(ctx, "k")
	require.False(t, res.Allowed)
}

func TestMemoryLimiter_Burst(t *testing.T) {
	l := NewMemoryLimiter(Policy{Route: "token", Limit: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, res.Allowed, "request %d", i)
	}
	res, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, "token", res.Route)
	require.Greater(t, res.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, res.RetryAfter, 20*time.Second)

	res, _ = l.Allow(ctx, "other")
	require.True(t, res.Allowed)
}

func TestDecide(t *testing.T) {
	r := decide(Policy{Route: "login", Limit: 3, Window: 90 * time.Second}, 5, -1)
	require.False(t, r.Allowed)
	require.Equal(t, 90*time.Second, r.RetryAfter)

	r = decide(Policy{Limit: 3, Window: time.Minute}, 1, 30*time.Second)
	require.True(t, r.Allowed)
	require.EqualValues(t, 2, r.Remaining)
	require.Zero(t, r.RetryAfter)
}
