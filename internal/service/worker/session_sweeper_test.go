package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/repository"
	"github.com/taichu-system/tenancy-management/internal/session"
	"github.com/taichu-system/tenancy-management/internal/testutil"
)

type countingSweeper struct {
	mu      sync.Mutex
	calls   int
	cutoffs []time.Time
	err     error
}

func (s *countingSweeper) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.cutoffs = append(s.cutoffs, before)
	if s.err != nil {
		return 0, s.err
	}
	return 2, nil
}

func (s *countingSweeper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestSessionSweeperRunsOnStartAndTicks(t *testing.T) {
	store := &countingSweeper{}
	w := NewSessionSweeper(store, 10*time.Millisecond, logger.NewNop())

	w.Start()
	assert.Eventually(t, func() bool { return store.Calls() >= 3 }, time.Second, 5*time.Millisecond)
	w.Stop()

	calls := store.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, store.Calls(), "no sweeps after Stop")
}

func TestSessionSweeperRetention(t *testing.T) {
	store := &countingSweeper{}
	w := NewSessionSweeper(store, time.Minute, logger.NewNop())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	assert.Equal(t, int64(2), w.Sweep())
	require.Len(t, store.cutoffs, 1)
	assert.Equal(t, fixed.Add(-time.Hour), store.cutoffs[0])
}

func TestSessionSweeperError(t *testing.T) {
	store := &countingSweeper{err: errors.New("db down")}
	w := NewSessionSweeper(store, time.Minute, logger.NewNop())
	assert.Equal(t, int64(0), w.Sweep())
}

func TestSessionSweeperWithDatabaseStore(t *testing.T) {
	ctx := context.Background()
	store := session.NewDatabaseStore(repository.NewSessionRepository(testutil.NewTestDB(t)))

	old := &model.Session{ID: uuid.New(), UserID: uuid.New(), Role: model.RoleTenant, ExpiresAt: time.Now().UTC().Add(-2 * time.Hour)}
	fresh := &model.Session{ID: uuid.New(), UserID: uuid.New(), Role: model.RoleTenant, ExpiresAt: time.Now().UTC().Add(time.Hour)}
	require.NoError(t, store.Create(ctx, old))
	require.NoError(t, store.Create(ctx, fresh))

	w := NewSessionSweeper(store, time.Minute, logger.NewNop())
	assert.Equal(t, int64(1), w.Sweep())

	_, err := store.Get(ctx, old.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = store.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}
