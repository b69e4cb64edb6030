package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/repository"
	"github.com/taichu-system/tenancy-management/internal/testutil"
)

type failingAuditStore struct{}

func (failingAuditStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func TestAuditPrunerDeletesOnlyExpiredEvents(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewAuditRepository(db)

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	old := &model.AuditEvent{Action: "login", Resource: "session", Result: "success"}
	recent := &model.AuditEvent{Action: "login", Resource: "session", Result: "success"}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, recent))
	require.NoError(t, db.Model(old).Update("timestamp", now.Add(-100*24*time.Hour)).Error)
	require.NoError(t, db.Model(recent).Update("timestamp", now.Add(-time.Hour)).Error)

	w := NewAuditPruner(repo, 90*24*time.Hour, time.Hour, logger.NewNop())
	w.now = func() time.Time { return now }

	assert.Equal(t, int64(1), w.Prune())

	var remaining []model.AuditEvent
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.ID, remaining[0].ID)
}

func TestAuditPrunerError(t *testing.T) {
	w := NewAuditPruner(failingAuditStore{}, time.Hour, time.Hour, logger.NewNop())
	assert.Equal(t, int64(0), w.Prune())
}

func TestAuditPrunerStop(t *testing.T) {
	w := NewAuditPruner(failingAuditStore{}, time.Hour, 5*time.Millisecond, logger.NewNop())
	w.Start()
	w.Stop()
}
