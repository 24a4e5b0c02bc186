package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()

	for name, c := range map[string]*Client{"nil": nil, "empty addr": New("", "", 0)} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, c.Enabled())
			assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
			got, err := c.Get(ctx, "k")
			assert.NoError(t, err)
			assert.Nil(t, got)
			assert.NoError(t, c.Delete(ctx, "k"))

			var dst []int
			c.SetJSON(ctx, "k", []int{1}, time.Minute)
			assert.False(t, c.GetJSON(ctx, "k", &dst))
			gen, ok := c.Generation(ctx, "g")
			assert.False(t, ok)
			assert.Zero(t, gen)
			c.Bump(ctx, "g")
			assert.NoError(t, c.Close())
		})
	}
}

func TestClient_UnreachableRedisFailsSafe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := NewWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer c.Close()

	assert.True(t, c.Enabled())
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestClient_JSONRoundTripAndGenerations(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	defer c.Close()

	c.SetJSON(ctx, "k", []int{1, 2}, time.Minute)
	var got []int
	require.True(t, c.GetJSON(ctx, "k", &got))
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.GetJSON(ctx, "k", &got), "expired")

	gen, ok := c.Generation(ctx, "g")
	require.True(t, ok)
	assert.Zero(t, gen)

	c.Bump(ctx, "g", "h")
	c.Bump(ctx, "g")
	gen, ok = c.Generation(ctx, "g")
	require.True(t, ok)
	assert.Equal(t, int64(2), gen)
	gen, _ = c.Generation(ctx, "h")
	assert.Equal(t, int64(1), gen)

	mr.Close()
	_, ok = c.Generation(ctx, "g")
	assert.False(t, ok, "unreachable redis disables the cache")
}
