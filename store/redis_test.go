package store

import (
	"context"
	"testing"
	"time"

	"github.com/always-cache/conditional/rfc7232"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a mock Redis server for testing
func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewRedisStore(client, ttl), mr
}

func TestRedisStorePutGetPurge(t *testing.T) {
	s, _ := setupTestRedis(t, 0)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "/a")
	require.NoError(t, err)
	assert.False(t, ok)

	v := rfc7232.TimedValidator{
		ETag:         rfc7232.StrongTag("abc"),
		LastModified: time.Date(2023, 2, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Put(ctx, "/a", v))

	got, ok, err := s.Get(ctx, "/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v, got)

	require.NoError(t, s.Purge(ctx, "/a"))
	_, ok, err = s.Get(ctx, "/a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreTTL(t *testing.T) {
	s, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "/a", rfc7232.TimedValidator{ETag: rfc7232.StrongTag("abc")}))

	mr.FastForward(2 * time.Minute)

	_, ok, err := s.Get(ctx, "/a")
	require.NoError(t, err)
	assert.False(t, ok)
}
