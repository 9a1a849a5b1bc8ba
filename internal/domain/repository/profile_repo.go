package repository

import (
	"context"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
)

// ProfileRepository определяет методы для работы с игровыми профилями
type ProfileRepository interface {
	// EnsureExists создаёт профиль, если его нет. Существующий не трогает.
	EnsureExists(ctx context.Context, userID uint, displayName string) error
	// GetForUpdate читает профиль с блокировкой строки до конца транзакции
	GetForUpdate(ctx context.Context, userID uint) (*entity.Profile, error)
	GetByUserID(ctx context.Context, userID uint) (*entity.Profile, error)
	Save(ctx context.Context, profile *entity.Profile) error
	UpdateSelectedAvatar(ctx context.Context, userID uint, avatarID uint) error
	// ListAfter возвращает профили с user_id > afterUserID по возрастанию (для обхода пачками)
	ListAfter(ctx context.Context, afterUserID uint, limit int) ([]entity.Profile, error)
	UpdateLevel(ctx context.Context, userID uint, level int) error
}
