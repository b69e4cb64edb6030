package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/repository"
	"gorm.io/gorm"
)

// DatabaseStore 基于数据库表的会话存储
type DatabaseStore struct {
	repo *repository.SessionRepository
}

func NewDatabaseStore(repo *repository.SessionRepository) *DatabaseStore {
	return &DatabaseStore{repo: repo}
}

func (s *DatabaseStore) Create(ctx context.Context, session *model.Session) error {
	return s.repo.Create(ctx, session)
}

func (s *DatabaseStore) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *DatabaseStore) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.repo.Revoke(ctx, id, time.Now().UTC())
}

func (s *DatabaseStore) RevokeUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.RevokeAllForUser(ctx, userID, time.Now().UTC())
}

func (s *DatabaseStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteExpired(ctx, before)
}
