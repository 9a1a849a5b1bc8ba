package repository

import (
	"context"
	"time"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
)

// AchievementRepository определяет методы для работы с достижениями
type AchievementRepository interface {
	// ListCatalog возвращает каталог в порядке display_order, id
	ListCatalog(ctx context.Context) ([]entity.Achievement, error)
	ListEarned(ctx context.Context, userID uint) ([]entity.UserAchievement, error)
	// Award выдаёт достижение. false, если оно уже было выдано (в том числе параллельным запросом).
	Award(ctx context.Context, userID, achievementID uint, earnedAt time.Time) (bool, error)
}
