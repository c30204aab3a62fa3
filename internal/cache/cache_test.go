package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stats struct {
	Venues  int     `json:"venues"`
	Average float64 `json:"average"`
}

func newTestCache(t *testing.T, namespace string) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, namespace, time.Minute), mr
}

func TestGetSet(t *testing.T) {
	c, mr := newTestCache(t, "analytics")
	ctx := context.Background()

	var got stats
	assert.ErrorIs(t, c.Get(ctx, "general", &got), ErrMiss)

	require.NoError(t, c.Set(ctx, "general", stats{Venues: 3, Average: 4.2}))
	require.NoError(t, c.Get(ctx, "general", &got))
	assert.Equal(t, stats{Venues: 3, Average: 4.2}, got)

	assert.True(t, mr.Exists("futsal:analytics:v1:general"))
	assert.Equal(t, time.Minute, mr.TTL("futsal:analytics:v1:general"))
}

func TestExpiry(t *testing.T) {
	c, mr := newTestCache(t, "analytics")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "general", stats{Venues: 1}))
	mr.FastForward(2 * time.Minute)

	var got stats
	assert.ErrorIs(t, c.Get(ctx, "general", &got), ErrMiss)
}

func TestInvalidateOnlyTouchesNamespace(t *testing.T) {
	c, mr := newTestCache(t, "analytics")
	ctx := context.Background()
	other := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "sessions", time.Minute)

	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))
	require.NoError(t, other.Set(ctx, "a", 3))

	require.NoError(t, c.Invalidate(ctx))

	var n int
	assert.ErrorIs(t, c.Get(ctx, "a", &n), ErrMiss)
	assert.ErrorIs(t, c.Get(ctx, "b", &n), ErrMiss)
	require.NoError(t, other.Get(ctx, "a", &n))
	assert.Equal(t, 3, n)
}

func TestRemember(t *testing.T) {
	c, _ := newTestCache(t, "analytics")
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (stats, error) {
		calls++
		return stats{Venues: calls}, nil
	}

	first, err := Remember(ctx, c, "general", load)
	require.NoError(t, err)
	second, err := Remember(ctx, c, "general", load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	require.NoError(t, c.Invalidate(ctx))
	third, err := Remember(ctx, c, "general", load)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Venues)
}

func TestRememberPropagatesLoadError(t *testing.T) {
	c, _ := newTestCache(t, "analytics")
	boom := errors.New("boom")

	_, err := Remember(context.Background(), c, "general", func(context.Context) (stats, error) {
		return stats{}, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestRememberFallsThroughWhenRedisDown(t *testing.T) {
	dead := redis.NewClient(&redis.Options{
		Addr:        "localhost:1",
		DialTimeout: 10 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer dead.Close()
	c := New(dead, "analytics", time.Minute)

	got, err := Remember(context.Background(), c, "general", func(context.Context) (stats, error) {
		return stats{Venues: 7}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, got.Venues)
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := Open(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer rdb.Close()

	_, err = Open(context.Background(), "not a url")
	assert.Error(t, err)
}
