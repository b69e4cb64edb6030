package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/tenancy-management/internal/config"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis session store test")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client, "tenancy-test-"+uuid.NewString())

	userID := uuid.New()
	s1 := newSession(userID, time.Minute)
	s2 := newSession(userID, time.Minute)
	require.NoError(t, store.Create(ctx, s1))
	require.NoError(t, store.Create(ctx, s2))

	got, err := store.Get(ctx, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	ttl, err := client.TTL(ctx, store.sessionKey(s1.ID)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, store.Revoke(ctx, s1.ID))
	_, err = store.Get(ctx, s1.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.RevokeUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = store.Get(ctx, s2.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, store.Create(ctx, newSession(userID, -time.Second)))

	t.Run("index outlives shorter later sessions", func(t *testing.T) {
		other := uuid.New()
		long := newSession(other, time.Minute)
		short := newSession(other, 5*time.Second)
		require.NoError(t, store.Create(ctx, long))
		require.NoError(t, store.Create(ctx, short))

		ttl, err := client.TTL(ctx, store.userKey(other)).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 5*time.Second)

		n, err := store.RevokeUser(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("revoke counts only sessions that still existed", func(t *testing.T) {
		other := uuid.New()
		live := newSession(other, time.Minute)
		gone := newSession(other, time.Minute)
		require.NoError(t, store.Create(ctx, live))
		require.NoError(t, store.Create(ctx, gone))
		require.NoError(t, client.Del(ctx, store.sessionKey(gone.ID)).Err())

		n, err := store.RevokeUser(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = store.RevokeUser(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}
