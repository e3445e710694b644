package worker

import (
	"context"
	"time"

	"dailyPlanner/internal/logger"

	"go.uber.org/zap"
)

const DefaultInterval = time.Minute

// Refresher - то, что умеет перечитать данные из бэкенда (planner.Planner)
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshWorker периодически перечитывает задачи, чтобы изменения с других устройств
// появлялись без ручного обновления
type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
	onRefresh func(error)
}

func NewRefreshWorker(refresher Refresher, interval *time.Duration, onRefresh func(error)) *RefreshWorker {
	intervalToSet := DefaultInterval
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	if onRefresh == nil {
		onRefresh = func(error) {}
	}
	return &RefreshWorker{
		refresher: refresher,
		interval:  intervalToSet,
		onRefresh: onRefresh,
	}
}

func (w *RefreshWorker) Interval() time.Duration {
	return w.interval
}

// Start блокируется до отмены ctx
func (w *RefreshWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Фоновое обновление запущено", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновое обновление останавливается")
			return
		}
	}
}

func (w *RefreshWorker) Check(ctx context.Context) {
	start := time.Now()

	err := w.refresher.Refresh(ctx)
	if err != nil {
		logger.Warn("Worker: Ошибка обновления задач", zap.Error(err))
	} else {
		logger.Debug("Worker: Задачи обновлены", zap.Duration("ms", time.Since(start)))
	}
	w.onRefresh(err)
}
