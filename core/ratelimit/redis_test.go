package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisLimiter(t *testing.T, opts Options) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { client.Close() })
	return NewRedisLimiter(client, opts, zap.NewNop()), mr
}

func TestRedisLimiter_AllowThenBan(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t, Options{Window: time.Minute, MaxRequests: 2})
	require.NoError(t, l.Ping(ctx))

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	banned, err := l.IsBanned(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, banned)
	assert.True(t, mr.Exists(banKeyPrefix+"1.2.3.4"))

	ok, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "limits are per address")

	mr.FastForward(10*time.Minute + time.Second)
	banned, err = l.IsBanned(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, banned)

	count, err := mr.Get(banCountKeyPrefix + "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "1", count)
}

func TestRedisLimiter_ConnectionError(t *testing.T) {
	l, mr := newRedisLimiter(t, Options{})
	mr.Close()
	_, err := l.Allow(context.Background(), "1.2.3.4")
	assert.Error(t, err)
}
