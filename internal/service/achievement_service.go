package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service/gamification"
)

// AchievementStatus - достижение глазами пользователя
type AchievementStatus struct {
	entity.Achievement
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
	Progress int64      `json:"progress"`
}

// AchievementService оценивает условия достижений и отдаёт каталог пользователю
type AchievementService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewAchievementService создает сервис достижений
func NewAchievementService(store repository.Store, logger *zap.Logger) *AchievementService {
	return &AchievementService{
		store:  store,
		logger: logger.Named("AchievementService"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock подменяет источник времени
func (s *AchievementService) SetClock(now func() time.Time) {
	s.now = now
}

// Evaluate выдаёт все ещё не полученные достижения, условия которых выполнены.
// Вызывается внутри транзакции регистратора попыток; store привязан к ней.
// Достижение, выданное параллельной транзакцией, в результат не попадает.
func (s *AchievementService) Evaluate(ctx context.Context, store repository.Store, userID uint, snap gamification.StatsSnapshot) ([]entity.Achievement, error) {
	catalog, err := store.Achievements().ListCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load achievement catalog: %w", err)
	}
	earned, err := store.Achievements().ListEarned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load earned achievements for user #%d: %w", userID, err)
	}

	have := make(map[uint]struct{}, len(earned))
	for _, ua := range earned {
		have[ua.AchievementID] = struct{}{}
	}

	now := s.now()
	var unlocked []entity.Achievement
	for i := range catalog {
		a := catalog[i]
		if _, ok := have[a.ID]; ok {
			continue
		}
		if !a.Criteria().Satisfied(snap) {
			continue
		}
		inserted, err := store.Achievements().Award(ctx, userID, a.ID, now)
		if err != nil {
			return nil, fmt.Errorf("award achievement %s to user #%d: %w", a.Code, userID, err)
		}
		if !inserted {
			s.logger.Debug("achievement already awarded concurrently",
				zap.Uint("user_id", userID), zap.String("code", a.Code))
			continue
		}
		unlocked = append(unlocked, a)
	}
	return unlocked, nil
}

// ListForUser возвращает каталог для пользователя. Скрытые достижения
// показываются только после получения.
func (s *AchievementService) ListForUser(ctx context.Context, userID uint) ([]AchievementStatus, error) {
	catalog, err := s.store.Achievements().ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	earnedAt, err := s.earnedIndex(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		at, earned := earnedAt[a.ID]
		if a.IsHidden && !earned {
			continue
		}
		st := AchievementStatus{Achievement: a, Earned: earned, Progress: a.Criteria().Progress(snap)}
		if earned {
			st.EarnedAt = &at
			st.Progress = a.CriteriaValue
		}
		result = append(result, st)
	}
	return result, nil
}

// ListEarned возвращает только полученные достижения, в порядке каталога
func (s *AchievementService) ListEarned(ctx context.Context, userID uint) ([]AchievementStatus, error) {
	catalog, err := s.store.Achievements().ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	earnedAt, err := s.earnedIndex(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]AchievementStatus, 0, len(earnedAt))
	for _, a := range catalog {
		at, ok := earnedAt[a.ID]
		if !ok {
			continue
		}
		result = append(result, AchievementStatus{Achievement: a, Earned: true, EarnedAt: &at, Progress: a.CriteriaValue})
	}
	return result, nil
}

func (s *AchievementService) earnedIndex(ctx context.Context, userID uint) (map[uint]time.Time, error) {
	earned, err := s.store.Achievements().ListEarned(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := make(map[uint]time.Time, len(earned))
	for _, ua := range earned {
		idx[ua.AchievementID] = ua.EarnedAt
	}
	return idx, nil
}

// snapshot собирает статистику для отображения прогресса (вне транзакции)
func (s *AchievementService) snapshot(ctx context.Context, userID uint) (gamification.StatsSnapshot, error) {
	stats, err := s.store.Attempts().StatsForUser(ctx, userID)
	if err != nil {
		return gamification.StatsSnapshot{}, err
	}
	profile, err := s.store.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return gamification.StatsSnapshot{}, err
		}
		profile = entity.NewProfile(userID, "")
	}
	return buildSnapshot(stats, profile), nil
}

// buildSnapshot объединяет агрегаты попыток и состояние профиля
func buildSnapshot(stats *repository.AttemptStats, profile *entity.Profile) gamification.StatsSnapshot {
	snap := gamification.StatsSnapshot{
		StudyStreakCurrent: profile.StudyStreakCurrent,
		Level:              profile.Level,
		AttemptsByExamType: map[string]int64{},
	}
	if stats != nil {
		snap.TotalAttempts = stats.TotalAttempts
		snap.PerfectAttempts = stats.PerfectAttempts
		snap.HighScoreAttempts = stats.HighScoreAttempts
		snap.TotalCorrectAnswers = stats.TotalCorrectAnswers
		if stats.AttemptsByExamType != nil {
			snap.AttemptsByExamType = stats.AttemptsByExamType
		}
	}
	return snap
}
