package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/viewpoint/cache"
)

func TestMemoryStore(t *testing.T) {
	// Arrange
	now := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	m := cache.NewMemoryStore()
	m.SetNow(func() time.Time { return now })
	ctx := context.Background()
	e := cache.Entry{Body: []byte("<p>hi</p>"), ContentType: "text/html; charset=utf-8"}

	// Act
	require.Nil(t, m.Set(ctx, "short", e, time.Minute))
	require.Nil(t, m.Set(ctx, "forever", e, 0))
	require.Nil(t, m.Set(ctx, "", e, 0))

	// Assert
	actual, ok := m.Get(ctx, "short")
	require.True(t, ok)
	require.Equal(t, e, actual)

	_, ok = m.Get(ctx, "")
	require.False(t, ok)

	_, ok = m.Get(ctx, "missing")
	require.False(t, ok)

	// Act
	now = now.Add(time.Minute)

	// Assert
	_, ok = m.Get(ctx, "short")
	require.False(t, ok)

	_, ok = m.Get(ctx, "forever")
	require.True(t, ok)
}

func TestMemoryStoreCanceled(t *testing.T) {
	// Arrange
	m := cache.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	require.Nil(t, m.Set(context.Background(), "k", cache.Entry{Body: []byte("v")}, 0))
	cancel()

	// Act
	require.ErrorIs(t, m.Set(ctx, "other", cache.Entry{Body: []byte("v")}, 0), context.Canceled)
	_, ok := m.Get(ctx, "k")

	// Assert
	require.False(t, ok)
	_, ok = m.Get(context.Background(), "other")
	require.False(t, ok)
}

func TestRedisStoreUnreachable(t *testing.T) {
	// Arrange
	r := cache.NewRedisStore(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 10 * time.Millisecond, MaxRetries: -1}, "vp:")
	defer r.Close()
	ctx := context.Background()

	// Act
	err := r.Set(ctx, "k", cache.Entry{Body: []byte("v")}, time.Minute)
	_, ok := r.Get(ctx, "k")

	// Assert
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "cannot cache k")
	require.False(t, ok)
}
