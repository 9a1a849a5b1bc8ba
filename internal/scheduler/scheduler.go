package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const warmLockKey = "warm:lock"

// Warmer пересчитывает закешированные рейтинги
type Warmer interface {
	Warm(ctx context.Context) error
}

// Locker берёт короткую распределённую блокировку (SET NX)
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}

// Scheduler периодически прогревает кеш рейтингов.
// На нескольких репликах за один тик работает только одна.
type Scheduler struct {
	scheduler *gocron.Scheduler
	warmer    Warmer
	locker    Locker
	interval  time.Duration
	logger    *zap.Logger
}

// New создает планировщик. locker может быть nil (одна реплика).
func New(warmer Warmer, locker Locker, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		warmer:    warmer,
		locker:    locker,
		interval:  interval,
		logger:    logger.Named("Scheduler"),
	}
}

// Start запускает задачи без блокировки вызывающего
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.scheduler.Every(s.interval).Do(s.warmLeaderboards, ctx); err != nil {
		return fmt.Errorf("schedule leaderboard warm job: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", zap.Duration("leaderboard_refresh_interval", s.interval))
	return nil
}

// Stop останавливает задачи
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) warmLeaderboards(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if s.locker != nil {
		// блокировка живёт меньше интервала, чтобы следующий тик её не застал
		acquired, err := s.locker.SetNX(ctx, warmLockKey, time.Now().UTC().Unix(), s.interval/2)
		if err != nil {
			s.logger.Warn("failed to acquire warm lock", zap.Error(err))
			return
		}
		if !acquired {
			s.logger.Debug("leaderboard warm skipped, another instance holds the lock")
			return
		}
	}

	start := time.Now()
	if err := s.warmer.Warm(ctx); err != nil {
		s.logger.Error("leaderboard warm failed", zap.Error(err))
		return
	}
	s.logger.Debug("leaderboard warm finished", zap.Duration("took", time.Since(start)))
}
