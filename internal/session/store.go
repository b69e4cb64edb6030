package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taichu-system/tenancy-management/internal/model"
)

// ErrNotFound 会话不存在
var ErrNotFound = errors.New("session not found")

// Store 服务端会话存储
type Store interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Sweeper 需要定期清理过期会话的存储实现
type Sweeper interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
