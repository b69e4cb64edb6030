package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/taichu-system/tenancy-management/internal/config"
	"github.com/taichu-system/tenancy-management/internal/model"
)

// RedisStore 基于 Redis 的会话存储，过期由 key TTL 负责
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisClient 创建并验证 Redis 连接
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tenancy"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

func (s *RedisStore) userKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:user-sessions:%s", s.prefix, userID)
}

func (s *RedisStore) Create(ctx context.Context, session *model.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now().UTC()
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(session.ID), data, ttl)
	pipe.SAdd(ctx, s.userKey(session.UserID), session.ID.String())
	// 索引集合的 TTL 只延长不缩短，需 Redis 7+
	pipe.ExpireNX(ctx, s.userKey(session.UserID), ttl)
	pipe.ExpireGT(ctx, s.userKey(session.UserID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Revoke 直接删除 key，之后的查询视为未知会话
func (s *RedisStore) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, s.sessionKey(id)).Err()
}

func (s *RedisStore) RevokeUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		keys = append(keys, s.sessionKey(id))
	}

	pipe := s.client.TxPipeline()
	var deleted *redis.IntCmd
	if len(keys) > 0 {
		deleted = pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, s.userKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	if deleted == nil {
		return 0, nil
	}
	return deleted.Val(), nil
}
