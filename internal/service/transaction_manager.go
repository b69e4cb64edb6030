package service

import (
	"context"
	"errors"
	"time"

	"github.com/taichu-system/tenancy-management/internal/config"
	"github.com/taichu-system/tenancy-management/internal/database"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransactionManager 事务管理器
type TransactionManager struct {
	db         *gorm.DB
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	log        *logger.Logger
}

// NewTransactionManager 创建事务管理器
func NewTransactionManager(db *gorm.DB, cfg config.TransactionConfig, log *logger.Logger) *TransactionManager {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &TransactionManager{
		db:         db,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		timeout:    cfg.Timeout,
		log:        log,
	}
}

// TxFunc 事务内操作，ctx 与 tx 绑定的上下文一致
type TxFunc func(ctx context.Context, tx *gorm.DB) error

// ExecuteWithContext 在事务中执行带上下文的操作
func (t *TransactionManager) ExecuteWithContext(ctx context.Context, operation TxFunc) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return operation(ctx, tx)
	})
}

// ExecuteWithRetry 带重试的事务执行，只有序列化失败、死锁等可重试错误才会整体重跑
func (t *TransactionManager) ExecuteWithRetry(ctx context.Context, operation TxFunc) error {
	var lastErr error
	for attempt := 0; attempt < t.maxRetries; attempt++ {
		if attempt > 0 {
			// 指数退避
			wait := t.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		err := t.ExecuteWithContext(ctx, operation)
		if err == nil {
			return nil
		}

		lastErr = err
		if !isRetryableError(err) {
			break
		}

		t.log.WarnContext(ctx, "Retrying transaction",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", t.maxRetries),
			zap.Error(err))
	}

	return lastErr
}

// ExecuteDetached 脱离调用方取消信号执行事务，调用方断开不会中断已开始的写入
func (t *TransactionManager) ExecuteDetached(ctx context.Context, operation TxFunc) error {
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	defer cancel()
	return t.ExecuteWithRetry(detached, operation)
}

// isRetryableError 判断错误是否可重试，业务错误永不重试
func isRetryableError(err error) bool {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return false
	}
	return database.IsRetryable(err)
}
