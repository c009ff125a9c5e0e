package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/linemk/remeras-order/internal/storage"
)

// Janitor периодически удаляет просроченные сессии. Если журнал отправок
// чистится сам (storage.DispatchPruner), из него удаляются записи старше
// retention: сессия живёт не дольше TTL, так что к ним уже никто не обратится.
type Janitor struct {
	log        *slog.Logger
	sessions   storage.SessionStorage
	dispatches storage.DispatchStorage
	interval   time.Duration
	retention  time.Duration
	now        func() time.Time
}

func NewJanitor(
	log *slog.Logger,
	sessions storage.SessionStorage,
	dispatches storage.DispatchStorage,
	interval time.Duration,
	retention time.Duration,
) *Janitor {
	return &Janitor{
		log:        log,
		sessions:   sessions,
		dispatches: dispatches,
		interval:   interval,
		retention:  retention,
		now:        time.Now,
	}
}

// Run блокируется до отмены контекста
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		return
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep возвращает число удалённых сессий
func (j *Janitor) Sweep(ctx context.Context) int64 {
	const op = "service.Janitor.Sweep"
	logger := j.log.With(slog.String("op", op))
	now := j.now()

	j.pruneDispatches(ctx, logger, now)

	removed, err := j.sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		logger.Error("failed to delete expired sessions", slog.Any("error", err))
		return 0
	}
	if removed > 0 {
		logger.Info("expired sessions removed", slog.Int64("count", removed))
	}
	return removed
}

func (j *Janitor) pruneDispatches(ctx context.Context, logger *slog.Logger, now time.Time) {
	pruner, ok := j.dispatches.(storage.DispatchPruner)
	if !ok || j.retention <= 0 {
		return
	}
	pruned, err := pruner.PruneDispatches(ctx, now.Add(-j.retention))
	if err != nil {
		logger.Error("failed to prune dispatches", slog.Any("error", err))
		return
	}
	if pruned > 0 {
		logger.Info("stale dispatches removed", slog.Int64("count", pruned))
	}
}
