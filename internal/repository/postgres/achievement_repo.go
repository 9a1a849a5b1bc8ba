package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
)

// AchievementRepo реализует repository.AchievementRepository
type AchievementRepo struct {
	db *gorm.DB
}

// NewAchievementRepo создает новый репозиторий достижений
func NewAchievementRepo(db *gorm.DB) *AchievementRepo {
	return &AchievementRepo{db: db}
}

// ListCatalog возвращает весь каталог в стабильном порядке
func (r *AchievementRepo) ListCatalog(ctx context.Context) ([]entity.Achievement, error) {
	var achievements []entity.Achievement
	err := r.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&achievements).Error
	return achievements, err
}

// ListEarned возвращает полученные пользователем достижения
func (r *AchievementRepo) ListEarned(ctx context.Context, userID uint) ([]entity.UserAchievement, error) {
	var earned []entity.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at ASC, id ASC").
		Find(&earned).Error
	return earned, err
}

// Award вставляет user_achievements с ON CONFLICT DO NOTHING.
// Внутри транзакции Postgres обычная ошибка уникальности прервала бы её,
// поэтому конфликт гасится на уровне SQL, а 0 строк означает "уже выдано".
func (r *AchievementRepo) Award(ctx context.Context, userID, achievementID uint, earnedAt time.Time) (bool, error) {
	ua := entity.UserAchievement{UserID: userID, AchievementID: achievementID, EarnedAt: earnedAt}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(&ua)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
