package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/repository"
	"github.com/taichu-system/tenancy-management/internal/testutil"
)

func newSession(userID uuid.UUID, ttl time.Duration) *model.Session {
	return &model.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      model.RoleTenant,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
}

func TestDatabaseStore(t *testing.T) {
	ctx := context.Background()
	store := NewDatabaseStore(repository.NewSessionRepository(testutil.NewTestDB(t)))

	userID := uuid.New()
	s1 := newSession(userID, time.Hour)
	s2 := newSession(userID, time.Hour)
	require.NoError(t, store.Create(ctx, s1))
	require.NoError(t, store.Create(ctx, s2))

	t.Run("get", func(t *testing.T) {
		got, err := store.Get(ctx, s1.ID)
		require.NoError(t, err)
		assert.Equal(t, userID, got.UserID)
		assert.Equal(t, model.RoleTenant, got.Role)
		assert.False(t, got.Revoked())
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("revoke single", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, s1.ID))
		got, err := store.Get(ctx, s1.ID)
		require.NoError(t, err)
		assert.True(t, got.Revoked())
	})

	t.Run("revoke user", func(t *testing.T) {
		n, err := store.RevokeUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := store.Get(ctx, s2.ID)
		require.NoError(t, err)
		assert.True(t, got.Revoked())
	})
}

func TestDatabaseStoreDeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := NewDatabaseStore(repository.NewSessionRepository(testutil.NewTestDB(t)))

	live := newSession(uuid.New(), time.Hour)
	expired := newSession(uuid.New(), -time.Minute)
	require.NoError(t, store.Create(ctx, live))
	require.NoError(t, store.Create(ctx, expired))

	n, err := store.DeleteExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
}
