package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// ProfileRepo реализует repository.ProfileRepository
type ProfileRepo struct {
	db *gorm.DB
}

// NewProfileRepo создает новый репозиторий профилей
func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// EnsureExists создаёт профиль через INSERT ... ON CONFLICT DO NOTHING
func (r *ProfileRepo) EnsureExists(ctx context.Context, userID uint, displayName string) error {
	profile := entity.NewProfile(userID, displayName)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(profile).Error
}

// GetForUpdate читает профиль с SELECT ... FOR UPDATE
func (r *ProfileRepo) GetForUpdate(ctx context.Context, userID uint) (*entity.Profile, error) {
	var profile entity.Profile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// GetByUserID возвращает профиль без блокировки
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint) (*entity.Profile, error) {
	var profile entity.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Save сохраняет все поля профиля
func (r *ProfileRepo) Save(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// UpdateSelectedAvatar точечно меняет выбранный аватар
func (r *ProfileRepo) UpdateSelectedAvatar(ctx context.Context, userID uint, avatarID uint) error {
	result := r.db.WithContext(ctx).Model(&entity.Profile{}).
		Where("user_id = ?", userID).
		Update("selected_avatar_id", avatarID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListAfter возвращает следующую пачку профилей по user_id
func (r *ProfileRepo) ListAfter(ctx context.Context, afterUserID uint, limit int) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Where("user_id > ?", afterUserID).
		Order("user_id ASC").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

// UpdateLevel точечно обновляет кешированный уровень
func (r *ProfileRepo) UpdateLevel(ctx context.Context, userID uint, level int) error {
	return r.db.WithContext(ctx).Model(&entity.Profile{}).
		Where("user_id = ?", userID).
		Update("level", level).Error
}
