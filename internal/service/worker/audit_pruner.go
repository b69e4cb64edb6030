package worker

import (
	"context"
	"sync"
	"time"

	"github.com/taichu-system/tenancy-management/internal/logger"
	"go.uber.org/zap"
)

// AuditStore 可按时间清理的审计存储
type AuditStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditPruner 按保留期定期删除旧审计记录
type AuditPruner struct {
	store     AuditStore
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewAuditPruner(store AuditStore, retention, interval time.Duration, log *logger.Logger) *AuditPruner {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &AuditPruner{
		store:     store,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (w *AuditPruner) Start() {
	w.log.Info("Starting audit pruner",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))

	w.Prune()

	w.wg.Add(1)
	go w.scheduler()
}

func (w *AuditPruner) Stop() {
	w.log.Info("Stopping audit pruner")
	w.cancel()
	w.wg.Wait()
}

func (w *AuditPruner) scheduler() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.Prune()
		}
	}
}

// Prune 执行一次清理，返回删除数量
func (w *AuditPruner) Prune() int64 {
	ctx, cancel := context.WithTimeout(w.ctx, time.Minute)
	defer cancel()

	cutoff := w.now().UTC().Add(-w.retention)
	deleted, err := w.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.log.Warn("Failed to prune audit events", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		w.log.Info("Pruned audit events", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted
}
