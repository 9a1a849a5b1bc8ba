package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// AvatarRepo реализует repository.AvatarRepository
type AvatarRepo struct {
	db *gorm.DB
}

// NewAvatarRepo создает новый репозиторий аватаров
func NewAvatarRepo(db *gorm.DB) *AvatarRepo {
	return &AvatarRepo{db: db}
}

// ListCatalog возвращает каталог аватаров
func (r *AvatarRepo) ListCatalog(ctx context.Context) ([]entity.Avatar, error) {
	var avatars []entity.Avatar
	err := r.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&avatars).Error
	return avatars, err
}

// GetByID возвращает аватар по ID
func (r *AvatarRepo) GetByID(ctx context.Context, id uint) (*entity.Avatar, error) {
	var avatar entity.Avatar
	if err := r.db.WithContext(ctx).First(&avatar, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &avatar, nil
}

// GetByIDs возвращает аватары по списку ID
func (r *AvatarRepo) GetByIDs(ctx context.Context, ids []uint) ([]entity.Avatar, error) {
	var avatars []entity.Avatar
	if len(ids) == 0 {
		return avatars, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("display_order ASC, id ASC").Find(&avatars).Error
	return avatars, err
}

// ListUnlocked возвращает открытые пользователем аватары
func (r *AvatarRepo) ListUnlocked(ctx context.Context, userID uint) ([]entity.UserAvatar, error) {
	var owned []entity.UserAvatar
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("unlocked_at ASC, id ASC").Find(&owned).Error
	return owned, err
}

// IsUnlocked проверяет, открыт ли аватар пользователю
func (r *AvatarRepo) IsUnlocked(ctx context.Context, userID, avatarID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.UserAvatar{}).
		Where("user_id = ? AND avatar_id = ?", userID, avatarID).
		Count(&count).Error
	return count > 0, err
}

// Unlock вставляет user_avatars с ON CONFLICT DO NOTHING
func (r *AvatarRepo) Unlock(ctx context.Context, userID, avatarID uint, unlockedAt time.Time) (bool, error) {
	ua := entity.UserAvatar{UserID: userID, AvatarID: avatarID, UnlockedAt: unlockedAt}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "avatar_id"}},
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
