package worker

import (
	"context"
	"sync"
	"time"

	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/session"
	"go.uber.org/zap"
)

// SessionSweeper 定期删除过期与已吊销的会话
type SessionSweeper struct {
	store    session.Sweeper
	log      *logger.Logger
	interval time.Duration
	// 吊销后保留一段时间，便于排查
	retention time.Duration
	now       func() time.Time
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewSessionSweeper(store session.Sweeper, interval time.Duration, log *logger.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &SessionSweeper{
		store:     store,
		log:       log,
		interval:  interval,
		retention: time.Hour,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (w *SessionSweeper) Start() {
	w.log.Info("Starting session sweeper", zap.Duration("interval", w.interval))

	w.Sweep()

	w.wg.Add(1)
	go w.scheduler()
}

func (w *SessionSweeper) Stop() {
	w.log.Info("Stopping session sweeper")
	w.cancel()
	w.wg.Wait()
}

func (w *SessionSweeper) scheduler() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep 执行一次清理，返回删除数量
func (w *SessionSweeper) Sweep() int64 {
	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	cutoff := w.now().UTC().Add(-w.retention)
	deleted, err := w.store.DeleteExpired(ctx, cutoff)
	if err != nil {
		w.log.Warn("Failed to sweep sessions", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		w.log.Info("Swept sessions", zap.Int64("deleted", deleted))
	}
	return deleted
}
